package adapters

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db    *sqlx.DB
	mu    sync.Mutex
	stmts map[string]*sqlx.Stmt
}

// NewSQLXAdapter creates a new SQLX adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db, stmts: make(map[string]*sqlx.Stmt)}
}

// Prepare prepares a named statement once and keeps it for the lifetime of the adapter.
func (s *SQLXAdapter) Prepare(ctx context.Context, stmt Statement) error {
	if !stmt.IsPrepared() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stmts[stmt.Name]; ok {
		return nil
	}

	prepared, err := s.db.PreparexContext(ctx, stmt.SQL)
	if err != nil {
		return err
	}

	s.stmts[stmt.Name] = prepared

	return nil
}

func (s *SQLXAdapter) lookup(name string) (*sqlx.Stmt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepared, ok := s.stmts[name]

	return prepared, ok
}

// BeginTx starts a transaction.
func (s *SQLXAdapter) BeginTx(ctx context.Context, readOnly bool) (DBTx, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return nil, err
	}

	return &sqlxTx{tx: tx, adapter: s}, nil
}

// Close closes all prepared statements. The sqlx.DB is owned by the caller.
func (s *SQLXAdapter) Close() error {
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

// sqlxTx wraps sqlx.Tx to implement the DBTx interface.
type sqlxTx struct {
	tx      *sqlx.Tx
	adapter *SQLXAdapter
}

// bind returns the prepared statement bound to this transaction.
func (s *sqlxTx) bind(ctx context.Context, stmt Statement) (*sqlx.Stmt, error) {
	prepared, ok := s.adapter.lookup(stmt.Name)
	if !ok {
		return nil, errStatementNotPrepared(stmt.Name)
	}

	return s.tx.StmtxContext(ctx, prepared), nil
}

// Exec executes a statement and returns the wrapped result.
func (s *sqlxTx) Exec(ctx context.Context, stmt Statement, args ...any) (DBResult, error) {
	var result sql.Result
	var err error

	if stmt.IsPrepared() {
		var bound *sqlx.Stmt
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
func (s *sqlxTx) Query(ctx context.Context, stmt Statement, args ...any) (DBRows, error) {
	var rows *sqlx.Rows
	var err error

	if stmt.IsPrepared() {
		var bound *sqlx.Stmt
		if bound, err = s.bind(ctx, stmt); err != nil {
			return nil, err
		}
		rows, err = bound.QueryxContext(ctx, args...)
	} else {
		rows, err = s.tx.QueryxContext(ctx, stmt.SQL, args...)
	}

	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows.Rows}, nil
}

// Commit commits the transaction.
func (s *sqlxTx) Commit(_ context.Context) error {
	return s.tx.Commit()
}

// Rollback rolls the transaction back unless it is already done.
func (s *sqlxTx) Rollback(_ context.Context) error {
	return ignoreTxDone(s.tx.Rollback())
}
