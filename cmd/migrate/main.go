package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/skyglass/flightmap/internal/db/migrations"
)

func main() {
	dbURL := flag.String("db", os.Getenv("DATABASE_URL"), "Database connection string")
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	if *dbURL == "" {
		log.Printf("Database connection string is required (-db flag or DATABASE_URL)")
		os.Exit(1)
	}

	database, err := sql.Open("postgres", *dbURL)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.Ping(); err != nil {
		log.Printf("Failed to ping database: %v", err)
		database.Close()
		os.Exit(1)
	}

	migrator := migrations.New(database)

	if *rollback {
		err = migrator.Rollback(migrations.All())
	} else {
		err = migrator.Migrate(migrations.All())
	}
	if err != nil {
		log.Printf("Migration failed: %v", err)
		database.Close()
		os.Exit(1)
	}

	database.Close()
}
