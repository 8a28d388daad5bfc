package adapters

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// SQLAdapter implements DBAdapter for sql.DB.
// It works with any database/sql driver, the engine uses it for lib/pq and modernc.org/sqlite.
type SQLAdapter struct {
	db    *sql.DB
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, stmts: make(map[string]*sql.Stmt)}
}

// Prepare prepares a named statement once and keeps it for the lifetime of the adapter.
func (s *SQLAdapter) Prepare(ctx context.Context, stmt Statement) error {
	if !stmt.IsPrepared() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stmts[stmt.Name]; ok {
		return nil
	}

	prepared, err := s.db.PrepareContext(ctx, stmt.SQL)
	if err != nil {
		return err
	}

	s.stmts[stmt.Name] = prepared

	return nil
}

func (s *SQLAdapter) lookup(name string) (*sql.Stmt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepared, ok := s.stmts[name]

	return prepared, ok
}

// BeginTx starts a transaction.
func (s *SQLAdapter) BeginTx(ctx context.Context, readOnly bool) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}

	return &sqlTx{tx: tx, adapter: s}, nil
}

// Close closes all prepared statements. The sql.DB is owned by the caller.
func (s *SQLAdapter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name, prepared := range s.stmts {
		if err := prepared.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.stmts, name)
	}

	return errors.Join(errs...)
}

// sqlTx wraps sql.Tx to implement the DBTx interface.
type sqlTx struct {
	tx      *sql.Tx
	adapter *SQLAdapter
}

// bind returns the prepared statement bound to this transaction.
func (s *sqlTx) bind(ctx context.Context, stmt Statement) (*sql.Stmt, error) {
	prepared, ok := s.adapter.lookup(stmt.Name)
	if !ok {
		return nil, errStatementNotPrepared(stmt.Name)
	}

	return s.tx.StmtContext(ctx, prepared), nil
}

// Exec executes a statement and returns the wrapped result.
func (s *sqlTx) Exec(ctx context.Context, stmt Statement, args ...any) (DBResult, error) {
	var result sql.Result
	var err error

	if stmt.IsPrepared() {
		var bound *sql.Stmt
		if bound, err = s.bind(ctx, stmt); err != nil {
			return nil, err
		}
		result, err = bound.ExecContext(ctx, args...)
	} else {
		result, err = s.tx.ExecContext(ctx, stmt.SQL, args...)
	}

	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Query executes a statement and returns the wrapped rows.
func (s *sqlTx) Query(ctx context.Context, stmt Statement, args ...any) (DBRows, error) {
	var rows *sql.Rows
	var err error

	if stmt.IsPrepared() {
		var bound *sql.Stmt
		if bound, err = s.bind(ctx, stmt); err != nil {
			return nil, err
		}
		rows, err = bound.QueryContext(ctx, args...)
	} else {
		rows, err = s.tx.QueryContext(ctx, stmt.SQL, args...)
	}

	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Commit commits the transaction.
func (s *sqlTx) Commit(_ context.Context) error {
	return s.tx.Commit()
}

// Rollback rolls the transaction back unless it is already done.
func (s *sqlTx) Rollback(_ context.Context) error {
	return ignoreTxDone(s.tx.Rollback())
}
