package adapters

import "context"

// Statement is a parameterized SQL statement. A non-empty Name marks it as a prepared statement.
type Statement struct {
	Name string
	SQL  string
}

// IsPrepared reports whether the statement should run as a prepared statement.
func (s Statement) IsPrepared() bool {
	return s.Name != ""
}

// DBAdapter defines the interface for database operations needed by the catalog engine.
type DBAdapter interface {
	// Prepare makes a named statement available to transactions started afterward.
	// It must be called before BeginTx, as the handle might be limited to a single connection.
	Prepare(ctx context.Context, stmt Statement) error
	BeginTx(ctx context.Context, readOnly bool) (DBTx, error)
	Close() error
}

// DBTx defines the interface for a running transaction.
type DBTx interface {
	Exec(ctx context.Context, stmt Statement, args ...any) (DBResult, error)
	Query(ctx context.Context, stmt Statement, args ...any) (DBRows, error)
	Commit(ctx context.Context) error
	// Rollback is a no-op for transactions that were already committed.
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
