package main

import (
	"context"
	"flag"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/arielallagbe23/mealprep/internal/dbmigrate"
)

func main() {
	dir := flag.String("dir", os.Getenv("MIGRATIONS_DIR"), "read migrations from this directory instead of the embedded set")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalf("usage: go run ./cmd/migrate [-dir path] [up|status|down]")
	}

	command := flag.Arg(0)
	switch command {
	case "up", "status", "down":
	default:
		log.Fatalf("unsupported command %q (allowed: up, status, down)", command)
	}

	cfg := config.Load()
	dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal(err)
	}

	if warning != "" {
		log.Printf("WARN migrate: %s", warning)
	}
	migrations := *dir
	if migrations == "" {
		migrations = "(embedded)"
	}
	log.Printf("migrate: command=%s using=%s migrations=%s", command, source, migrations)

	if err := dbmigrate.Run(context.Background(), command, dbURL, *dir); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrate: %s completed successfully", command)
}
