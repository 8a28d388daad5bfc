// Package config provides database configuration for catalog engine testing.
//
// This package contains factory functions for creating database handles for every
// adapter the engine supports (pgx.Pool, sql.DB and sqlx.DB with lib/pq, sql.DB with
// modernc.org/sqlite) with pre-configured test DSNs.
package config
