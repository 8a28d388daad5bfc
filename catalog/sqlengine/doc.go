// Package sqlengine provides the relational storage for the catalog.
//
// The Engine owns the database handle (through an adapter), creates the schema,
// prepares the parameterized statements and maps rows back to catalog entities.
// Writes run in their own read-write transaction and are committed immediately,
// reads run in a read-only transaction. Nothing is retried.
//
// Supported handles:
//   - *pgxpool.Pool (PostgreSQL)
//   - *sql.DB with lib/pq (PostgreSQL)
//   - *sqlx.DB with lib/pq (PostgreSQL)
//   - *sql.DB with modernc.org/sqlite (SQLite)
//
// Usage examples:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	engine, _ := sqlengine.NewEngineFromPGXPool(pool, sqlengine.WithLogger(logger))
//	_ = engine.EnsureSchema(ctx)
//
//	authors := sqlengine.NewAuthorRepository(engine)
//	books := sqlengine.NewBookRepository(engine)
//
// Observability: WithLogger, WithContextualLogger, WithMetrics and WithTracing accept
// small interfaces, so any logging, metrics or tracing backend can be plugged in.
// Every operation opens one span named "catalog.<operation>".
//
// Duplicate author names, duplicate ids and missing mandatory values are reported
// as catalog.ErrConstraintViolation, joined with the driver error.
package sqlengine
