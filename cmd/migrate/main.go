package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/database"
	"github.com/pageza/recetario/backend/internal/observability"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback migrations instead of applying them")
	steps := flag.Int("steps", 1, "Number of migrations to roll back")
	version := flag.Bool("version", false, "Print the current schema version and exit")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("DATABASE_URL is not set and configuration failed to load: %v", err)
		}
		dsn = database.PostgresURL(cfg)
	}

	logger, closer := observability.NewLogger(observability.LogConfig{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: "text",
	})
	defer closer.Close()

	switch {
	case *version:
		v, dirty, err := database.MigrationVersion(dsn)
		if err != nil {
			log.Fatalf("failed to read migration version: %v", err)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
	case *rollback:
		if err := database.Rollback(dsn, *steps, logger); err != nil {
			log.Fatalf("failed to roll back migrations: %v", err)
		}
	default:
		if err := database.Migrate(dsn, logger); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
	}
}
