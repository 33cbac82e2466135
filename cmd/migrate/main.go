package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"rngbench/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Tables in reverse dependency order
var dropTables = []string{
	"comparisons",
	"test_results",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	reset := false
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--reset":
			reset = true
		default:
			databaseURL = arg
		}
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate [--reset] [database_url] (or set DATABASE_URL)")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if reset {
		resetDatabase(ctx, db)
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migration complete: schema version %s", migrator.Version())
}

// resetDatabase drops every table the migrations create
func resetDatabase(ctx context.Context, db *sqlx.DB) {
	log.Println("Resetting database - dropping all tables...")
	for _, table := range dropTables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			log.Printf("Warning: failed to drop table %s: %v", table, err)
		}
	}
}
