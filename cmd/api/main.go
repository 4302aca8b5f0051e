package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/arielallagbe23/mealprep/internal/dbmigrate"
	"github.com/arielallagbe23/mealprep/internal/httpserver"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	printStartupBanner(cfg)

	if cfg.RunMigrationsOnStartup {
		dbURL, source, _, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}

		log.Printf("startup migrations: command=up using=%s", source)
		if err := dbmigrate.Run(ctx, "up", dbURL, ""); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("startup migrations: completed")
	}

	validateProductionConfig(cfg)

	server, err := httpserver.New(ctx, cfg)
	if err != nil {
		log.Fatalf("FATAL startup: %v", err)
	}

	err = server.Start()
	server.Close()
	log.Fatalf("FATAL http: %v", err)
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// Secrets are only reported as "set" / "not set".
func printStartupBanner(cfg *config.Config) {
	log.Println("========== mealprep API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)

	log.Println("---- database ----")
	log.Printf("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
	log.Printf("  pooled           = %s", setOrNot(cfg.DatabaseURLPooled))
	log.Printf("  direct           = %s", setOrNot(cfg.DatabaseURLDirect))
	log.Printf("  max_conns        = %d", cfg.DBMaxConns)
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	if cfg.RunMigrationsOnStartup && cfg.DatabaseURLDirect == "" {
		log.Printf("  migrations_via   = (will fail, DATABASE_URL_DIRECT not set)")
	}

	log.Println("---- auth ----")
	log.Printf("  auth_mode        = %s", cfg.AuthMode)
	log.Printf("  auth_required    = %t", cfg.AuthRequired)
	log.Printf("  jwt_secret       = %s", secretStatus(cfg.JWTSecret, "change_me"))
	log.Printf("  jwt_ttl_minutes  = %d", cfg.JWTTTLMinutes)
	if !cfg.AuthRequired {
		log.Printf("  default_user_id  = %s", nonEmptyOrDash(cfg.DefaultUserID))
	}

	log.Println("---- cache ----")
	log.Printf("  redis_url        = %s", setOrNot(cfg.RedisURL))
	log.Printf("  catalog_ttl_s    = %d", cfg.CatalogCacheTTLSecond)

	log.Println("---- blob ----")
	log.Printf("  blob_mode        = %s", cfg.Blob.Mode)
	if cfg.Blob.Mode != config.BlobModeLocal {
		log.Printf("  s3: %s", cfg.Blob.S3.DiagnosticsSummary())
	}

	log.Println("---- composer ----")
	log.Printf("  ratios           = %s", describeRatios(cfg.Composer.Ratios))
	log.Printf("  caps             = %d categories", len(cfg.Composer.CategoryCaps))
	log.Printf("  item_ceilings    = %d foods", len(cfg.Composer.ItemCeilings))
	log.Printf("  tolerance        = %.3f", cfg.Composer.Tolerance)
	log.Printf("  max_iterations   = %d", cfg.Composer.MaxIterations)
	log.Printf("  breakfast_kcal   = %d", cfg.Composer.DefaultBreakfastKcal)

	log.Println("==================================")
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "staging"

	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL blob: BLOB_MODE is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		log.Fatalf("FATAL auth: JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=1", cfg.Env)
	}

	if isProd && cfg.AuthMode == "dev" && !cfg.AuthRequired {
		log.Printf("WARN auth: AUTH_MODE=dev without AUTH_REQUIRED in %s, anyone can mint tokens", cfg.Env)
	}

	if isProd && cfg.DatabaseURL == "" {
		log.Fatalf("FATAL db: no DATABASE_URL configured in %s", cfg.Env)
	}
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}

func describeRatios(ratios map[string]float64) string {
	names := make([]string, 0, len(ratios))
	for name := range ratios {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%g", name, ratios[name]))
	}
	return strings.Join(parts, ",")
}
