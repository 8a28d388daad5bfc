package config

import (
	"context"
	"database/sql"
	"log"
	"path/filepath"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteTestConfig creates a configured *sql.DB backed by a fresh SQLite file in dir.
// SQLite allows a single writer, so the handle is limited to one connection.
func SQLiteTestConfig(dir string) *sql.DB {
	db, err := sql.Open("sqlite", filepath.Join(dir, "catalog.db")+"?_pragma=busy_timeout(5000)")
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	db.SetMaxOpenConns(1)

	if pingErr := db.PingContext(context.Background()); pingErr != nil {
		log.Fatal("Failed to ping database, error: ", pingErr)
	}

	return db
}
