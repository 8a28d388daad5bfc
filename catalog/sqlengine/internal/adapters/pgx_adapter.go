package adapters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool *pgxpool.Pool
}

// NewPGXAdapter creates a new PGX adapter.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// Prepare does nothing for pgx: prepared statements live on a connection,
// so they are prepared inside each transaction (pgx skips statements it already knows).
func (p *PGXAdapter) Prepare(_ context.Context, _ Statement) error {
	return nil
}

// BeginTx starts a transaction on a pooled connection.
func (p *PGXAdapter) BeginTx(ctx context.Context, readOnly bool) (DBTx, error) {
	opts := pgx.TxOptions{AccessMode: pgx.ReadWrite}
	if readOnly {
		opts.AccessMode = pgx.ReadOnly
	}

	tx, err := p.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &pgxTx{tx: tx}, nil
}

// Close does nothing, the pool is owned by the caller.
func (p *PGXAdapter) Close() error {
	return nil
}

// pgxTx wraps pgx.Tx to implement the DBTx interface.
type pgxTx struct {
	tx pgx.Tx
}

// sqlFor prepares a named statement on the transaction's connection and returns what pgx should execute.
func (p *pgxTx) sqlFor(ctx context.Context, stmt Statement) (string, error) {
	if !stmt.IsPrepared() {
		return stmt.SQL, nil
	}

	sd, err := p.tx.Prepare(ctx, stmt.Name, stmt.SQL)
	if err != nil {
		return "", err
	}

	return sd.Name, nil
}

// Exec executes a statement and returns the wrapped result.
func (p *pgxTx) Exec(ctx context.Context, stmt Statement, args ...any) (DBResult, error) {
	sql, err := p.sqlFor(ctx, stmt)
	if err != nil {
		return nil, err
	}

	tag, err := p.tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// Query executes a statement and returns the wrapped rows.
func (p *pgxTx) Query(ctx context.Context, stmt Statement, args ...any) (DBRows, error) {
	sql, err := p.sqlFor(ctx, stmt)
	if err != nil {
		return nil, err
	}

	rows, err := p.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// Commit commits the transaction.
func (p *pgxTx) Commit(ctx context.Context) error {
	return p.tx.Commit(ctx)
}

// Rollback rolls the transaction back unless it is already closed.
func (p *pgxTx) Rollback(ctx context.Context) error {
	if err := p.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Scan copies row values into provided destinations.
func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Err returns the error, if any, that was encountered during iteration.
func (p *pgxRows) Err() error {
	return p.rows.Err()
}

// Close closes the rows iterator.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}
