package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
	"github.com/AntonStoeckl/bookcatalog/catalog/zerologadapter"
)

const connectTimeout = 5 * time.Second

// openEngine opens a single-connection database handle for the configured adapter and builds the engine on it.
// The returned func closes the engine and the handle.
func openEngine(ctx context.Context, cfg config, logger zerolog.Logger) (*sqlengine.Engine, func(), error) {
	options := []sqlengine.Option{
		sqlengine.WithAuthorsTableName(cfg.authorsTable),
		sqlengine.WithBooksTableName(cfg.booksTable),
		sqlengine.WithLogger(zerologadapter.NewLogger(logger)),
	}

	var engine *sqlengine.Engine
	var closeHandle func() error
	var err error

	switch cfg.adapter {
	case adapterPGX:
		var pool *pgxpool.Pool
		if pool, err = openPGXPool(ctx, cfg.connectionString); err != nil {
			return nil, nil, err
		}
		closeHandle = func() error { pool.Close(); return nil }
		engine, err = sqlengine.NewEngineFromPGXPool(pool, options...)

	case adapterSQL:
		var db *sql.DB
		if db, err = openSQLDB(ctx, "postgres", cfg.connectionString); err != nil {
			return nil, nil, err
		}
		closeHandle = db.Close
		engine, err = sqlengine.NewEngineFromSQLDB(db, options...)

	case adapterSQLX:
		var db *sql.DB
		if db, err = openSQLDB(ctx, "postgres", cfg.connectionString); err != nil {
			return nil, nil, err
		}
		dbx := sqlx.NewDb(db, "postgres")
		closeHandle = dbx.Close
		engine, err = sqlengine.NewEngineFromSQLX(dbx, options...)

	case adapterSQLite:
		var db *sql.DB
		if db, err = openSQLDB(ctx, "sqlite", cfg.connectionString); err != nil {
			return nil, nil, err
		}
		closeHandle = db.Close
		engine, err = sqlengine.NewEngineFromSQLite(db, options...)

	default:
		return nil, nil, ErrUnsupportedAdapter
	}

	if err != nil {
		_ = closeHandle()
		return nil, nil, err
	}

	closeAll := func() {
		if closeErr := engine.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close prepared statements")
		}

		if closeErr := closeHandle(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close database")
		}
	}

	return engine, closeAll, nil
}

func openPGXPool(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	poolConfig.MaxConns = 1
	poolConfig.MinConns = 1
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectingFailed, pingErr)
	}

	return pool, nil
}

// openSQLDB opens a database/sql handle limited to one connection, SQLite allows a single writer anyway.
func openSQLDB(ctx context.Context, driverName string, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingFailed, pingErr)
	}

	return db, nil
}
