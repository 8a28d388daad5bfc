// Package sqlwrapper creates catalog engines for tests, backed by the adapter chosen
// with the ADAPTER_TYPE environment variable:
//
//	sqlite   (default) a fresh SQLite file per test, no server needed
//	pgx.pool PostgreSQL via pgxpool
//	sql.db   PostgreSQL via database/sql and lib/pq
//	sqlx.db  PostgreSQL via sqlx and lib/pq
//
// The PostgreSQL variants expect a database reachable with config.PostgresTestDSN.
package sqlwrapper
