// Package adapters provide database adapter implementations for the SQL catalog engine.
//
// The adapters hide the differences between pgx.Pool, sql.DB and sqlx.DB behind a
// common DBAdapter interface. Every operation runs inside a DBTx. Named statements
// are prepared once and then executed by name; unnamed statements are executed as is.
package adapters
