package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == ""

	if allEmpty {
		return "INFO", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "INFO", "s3_ready", "ready"
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		setOrNot(c.AccessKeyID),
		setOrNot(c.SecretAccessKey),
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// CategoryCap bounds the total grams of one category. Nil means unbounded.
type CategoryCap struct {
	Min *int
	Max *int
}

// ComposerConfig holds the allocation rules handed to the composer.
type ComposerConfig struct {
	Ratios               map[string]float64
	CategoryCaps         map[string]CategoryCap
	ItemCeilings         map[string]int // keyed by display name, normalized by the composer
	MinDensityKcalPerG   float64
	Tolerance            float64
	MaxIterations        int
	DefaultBreakfastKcal int
}

// DefaultComposerConfig mirrors the tables the meal composer shipped with.
func DefaultComposerConfig() ComposerConfig {
	return ComposerConfig{
		Ratios: map[string]float64{
			"Starches":   0.325,
			"Proteins":   0.475,
			"Vegetables": 0.05,
			"Sides":      0.15,
		},
		CategoryCaps: map[string]CategoryCap{
			"Vegetables": {Min: intPtr(200), Max: intPtr(450)},
			"Sides":      {Min: intPtr(0), Max: intPtr(25)},
		},
		ItemCeilings: map[string]int{
			"Raw chicken breast": 300,
		},
		MinDensityKcalPerG:   0.01,
		Tolerance:            0.05,
		MaxIterations:        300,
		DefaultBreakfastKcal: 500,
	}
}

// Config holds the application configuration.
type Config struct {
	Env      string // local | staging | production
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)
	DBMaxConns        int

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Blob storage for shopping list exports
	Blob BlobConfig

	// Catalog cache
	RedisURL              string
	CatalogCacheTTLSecond int

	// Authentication
	AuthMode      string // none | dev
	AuthEnabled   bool
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int
	DefaultUserID string

	// Composer
	Composer ComposerConfig

	// Meals
	MealsMaxItems    int
	MealsMaxPortions int

	// Migrations
	RunMigrationsOnStartup bool
}

// Load reads the configuration from environment variables.
func Load() *Config {
	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	dbMaxConns := envInt("DB_MAX_CONNS", 10)
	if dbMaxConns <= 0 {
		dbMaxConns = 10
	}

	runMigrationsOnStartup := parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Blob / S3 ----------
	blobMode := parseBlobMode("BLOB_MODE", BlobModeLocal)

	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	blobCfg := BlobConfig{
		Mode: blobMode,
		S3: S3Config{
			Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
			PresignTTLSeconds: s3PresignTTL,
			PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
		},
	}

	// ---------- Cache ----------
	redisURL := strings.TrimSpace(os.Getenv("REDIS_URL"))
	catalogCacheTTL := envInt("CATALOG_CACHE_TTL_SECONDS", 300)
	if catalogCacheTTL < 0 {
		catalogCacheTTL = 300
	}

	// ---------- Auth ----------
	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode == "" {
		authMode = "none"
	}
	if authMode != "none" && authMode != "dev" {
		log.Printf("WARNING: unknown AUTH_MODE=%q, fallback to none", authMode)
		authMode = "none"
	}
	authEnabled := authMode != "none"
	authRequired := authEnabled && parseBoolEnv("AUTH_REQUIRED")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "mealprep"
	}

	// JWT_TTL_MINUTES (default: 10080 = 7 days)
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)
	if jwtTTLMinutes <= 0 {
		jwtTTLMinutes = 10080
	}

	defaultUserID := strings.TrimSpace(os.Getenv("DEFAULT_USER_ID"))
	if defaultUserID == "" {
		defaultUserID = "default"
	}

	// ---------- Composer ----------
	composerCfg := loadComposerConfig()

	// ---------- Meals ----------
	mealsMaxItems := envInt("MEALS_MAX_ITEMS", 50)
	if mealsMaxItems <= 0 {
		mealsMaxItems = 50
	}
	mealsMaxPortions := envInt("MEALS_MAX_PORTIONS", 50)
	if mealsMaxPortions <= 0 {
		mealsMaxPortions = 50
	}

	return &Config{
		Env:               env,
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,
		DBMaxConns:        dbMaxConns,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		Blob: blobCfg,

		RedisURL:              redisURL,
		CatalogCacheTTLSecond: catalogCacheTTL,

		AuthMode:      authMode,
		AuthEnabled:   authEnabled,
		AuthRequired:  authRequired,
		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: jwtTTLMinutes,
		DefaultUserID: defaultUserID,

		Composer: composerCfg,

		MealsMaxItems:    mealsMaxItems,
		MealsMaxPortions: mealsMaxPortions,

		RunMigrationsOnStartup: runMigrationsOnStartup,
	}
}

func loadComposerConfig() ComposerConfig {
	cfg := DefaultComposerConfig()

	if raw := strings.TrimSpace(os.Getenv("COMPOSER_RATIOS")); raw != "" {
		ratios, err := ParseRatios(raw)
		if err != nil {
			log.Printf("WARNING: invalid COMPOSER_RATIOS (%v), using defaults", err)
		} else {
			cfg.Ratios = ratios
		}
	}

	if raw := strings.TrimSpace(os.Getenv("COMPOSER_CATEGORY_CAPS")); raw != "" {
		caps, err := ParseCategoryCaps(raw)
		if err != nil {
			log.Printf("WARNING: invalid COMPOSER_CATEGORY_CAPS (%v), using defaults", err)
		} else {
			cfg.CategoryCaps = caps
		}
	}

	if raw := strings.TrimSpace(os.Getenv("COMPOSER_ITEM_CEILINGS")); raw != "" {
		ceilings, err := ParseItemCeilings(raw)
		if err != nil {
			log.Printf("WARNING: invalid COMPOSER_ITEM_CEILINGS (%v), using defaults", err)
		} else {
			cfg.ItemCeilings = ceilings
		}
	}

	cfg.MinDensityKcalPerG = envFloat("COMPOSER_MIN_DENSITY", cfg.MinDensityKcalPerG)
	if cfg.MinDensityKcalPerG <= 0 {
		cfg.MinDensityKcalPerG = 0.01
	}

	cfg.Tolerance = envFloat("COMPOSER_TOLERANCE", cfg.Tolerance)
	if cfg.Tolerance < 0 || cfg.Tolerance > 1 {
		log.Printf("WARNING: COMPOSER_TOLERANCE=%v out of range, fallback to 0.05", cfg.Tolerance)
		cfg.Tolerance = 0.05
	}

	cfg.MaxIterations = envInt("COMPOSER_MAX_ITERATIONS", cfg.MaxIterations)
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 300
	}

	cfg.DefaultBreakfastKcal = envInt("COMPOSER_BREAKFAST_KCAL_DEFAULT", cfg.DefaultBreakfastKcal)
	if cfg.DefaultBreakfastKcal < 0 {
		cfg.DefaultBreakfastKcal = 0
	}

	return cfg
}

// ParseRatios parses "Starches:0.325,Proteins:0.475".
func ParseRatios(raw string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, part := range splitList(raw) {
		name, value, err := splitPair(part)
		if err != nil {
			return nil, err
		}
		ratio, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("ratio for %q: %w", name, err)
		}
		out[name] = ratio
	}
	return out, nil
}

// ParseCategoryCaps parses "Vegetables:200-450,Sides:-25"; either bound may be omitted.
func ParseCategoryCaps(raw string) (map[string]CategoryCap, error) {
	out := make(map[string]CategoryCap)
	for _, part := range splitList(raw) {
		name, value, err := splitPair(part)
		if err != nil {
			return nil, err
		}
		lo, hi, found := strings.Cut(value, "-")
		if !found {
			return nil, fmt.Errorf("cap for %q must look like min-max", name)
		}

		var cap CategoryCap
		if s := strings.TrimSpace(lo); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("min cap for %q: %w", name, err)
			}
			cap.Min = intPtr(v)
		}
		if s := strings.TrimSpace(hi); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("max cap for %q: %w", name, err)
			}
			cap.Max = intPtr(v)
		}
		out[name] = cap
	}
	return out, nil
}

// ParseItemCeilings parses "Raw chicken breast:300".
func ParseItemCeilings(raw string) (map[string]int, error) {
	out := make(map[string]int)
	for _, part := range splitList(raw) {
		name, value, err := splitPair(part)
		if err != nil {
			return nil, err
		}
		grams, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("ceiling for %q: %w", name, err)
		}
		out[name] = grams
	}
	return out, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitPair(part string) (string, string, error) {
	idx := strings.LastIndex(part, ":")
	if idx <= 0 || idx == len(part)-1 {
		return "", "", fmt.Errorf("entry %q must look like name:value", part)
	}
	return strings.TrimSpace(part[:idx]), strings.TrimSpace(part[idx+1:]), nil
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil // prod: deny by default
	}

	return splitList(raw)
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func intPtr(v int) *int {
	return &v
}
