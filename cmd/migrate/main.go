package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fixora/resourcesvc/infrastructure/adapter/postgres"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or version")
	steps := flag.Int("steps", 1, "number of migrations to roll back with -mode=down")
	dir := flag.String("dir", "", "migrations directory (default $MIGRATIONS_PATH or ./migrations)")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	path := *dir
	if path == "" {
		path = os.Getenv("MIGRATIONS_PATH")
	}
	if path == "" {
		path = "migrations"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, postgres.DBConfig{URL: dsn, MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	migrator, err := postgres.NewMigrator(db, path)
	if err != nil {
		log.Fatalf("failed to prepare migrations: %v", err)
	}

	switch strings.ToLower(*mode) {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatalf("%v", err)
		}
		log.Println("migrations applied")
	case "down":
		if err := migrator.Down(*steps); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("rolled back %d migration(s)", *steps)
	case "version":
		version, dirty, ok, err := migrator.Version()
		if err != nil {
			log.Fatalf("failed to read version: %v", err)
		}
		if !ok {
			log.Println("no migrations applied")
			return
		}
		log.Printf("version %d (dirty=%t)", version, dirty)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}
