package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine/internal/adapters"
)

const (
	defaultAuthorsTableName      = "authors"
	defaultBooksTableName        = "books"
	logMsgEnsureSchemaFailed     = "failed to ensure schema"
	logMsgInsertAuthorFailed     = "failed to insert author"
	logMsgSelectAuthorsFailed    = "failed to select authors"
	logMsgInsertBookFailed       = "failed to insert book"
	logMsgSelectBooksFailed      = "failed to select books"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgRollbackFailed         = "failed to roll back transaction"
	logMsgCloseStatementsFailed  = "failed to close prepared statements"
	logMsgSchemaEnsured          = "schema ensured"
	logMsgAuthorInserted         = "author inserted"
	logMsgAuthorsSelected        = "authors selected"
	logMsgBookInserted           = "book inserted"
	logMsgBooksSelected          = "books selected"
	logMsgConstraintViolation    = "constraint violation detected"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "catalog operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrDurationMS            = "duration_ms"
	logAttrAuthorID              = "author_id"
	logAttrBookID                = "book_id"
	logAttrAuthorCount           = "author_count"
	logAttrBookCount             = "book_count"
	logActionEnsureSchema        = "ensure schema"
	logActionInsertAuthor        = "insert author"
	logActionSelectAuthors       = "select authors"
	logActionInsertBook          = "insert book"
	logActionSelectBooksByAuthor = "select books by author"
	logActionSelectBooks         = "select books"
	colID                        = "id"
	colName                      = "name"
	colAuthorID                  = "author_id"
	colTitle                     = "title"
	colPublicationYear           = "publication_year"
	colSequenceNumber            = "sequence_number"
	colRowID                     = "rowid"
	stmtInsert                   = "insert"
	stmtSelectAll                = "select_all"
	stmtSelectByAuthor           = "select_by_author"
	dialectPostgres              = "postgres"
	dialectSQLite                = "sqlite3"
	metricOperationDuration      = "catalog_operation_duration_seconds"
	metricAuthorsInserted        = "catalog_authors_inserted_total"
	metricAuthorsSelected        = "catalog_authors_selected"
	metricBooksInserted          = "catalog_books_inserted_total"
	metricBooksSelected          = "catalog_books_selected"
	metricConstraintViolations   = "catalog_constraint_violations_total"
	metricDatabaseErrors         = "catalog_database_errors_total"
	metricLabelStatus            = "status"
	spanNamePrefix               = "catalog."
	spanAttrOperation            = "operation"
	spanAttrErrorType            = "error_type"
	spanAttrDurationMS           = "duration_ms"
	spanAttrAuthorID             = "author_id"
	spanAttrBookID               = "book_id"
	spanAttrAuthorCount          = "author_count"
	spanAttrBookCount            = "book_count"
	statusSuccess                = "success"
	statusError                  = "error"
	operationEnsureSchema        = "ensure_schema"
	operationInsertAuthor        = "insert_author"
	operationSelectAuthors       = "select_authors"
	operationInsertBook          = "insert_book"
	operationSelectBooksByAuthor = "select_books_by_author"
	operationSelectBooks         = "select_books"
	errorTypeConstraintViolation = "constraint_violation"
	errorTypeCanceled            = "canceled"
	errorTypePrepareStatement    = "prepare_statement"
	errorTypeBeginTx             = "begin_tx"
	errorTypeCommitTx            = "commit_tx"
	errorTypeScanRow             = "scan_row"
	errorTypeInvalidID           = "invalid_id"
	errorTypeDatabase            = "database"
)

// Engine is the database manager of the catalog.
// It is safe for concurrent use, although the catalog itself issues one operation at a time.
type Engine struct {
	db               adapters.DBAdapter
	dialect          dialect
	authorsTableName string
	booksTableName   string
	logger           Logger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
	contextualLogger ContextualLogger
	stmts            statements
}

// NewEngineFromPGXPool creates a new Engine for PostgreSQL using a pgx Pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), postgresDialect, options...)
}

// NewEngineFromSQLDB creates a new Engine for PostgreSQL using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), postgresDialect, options...)
}

// NewEngineFromSQLX creates a new Engine for PostgreSQL using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), postgresDialect, options...)
}

// NewEngineFromSQLite creates a new Engine for SQLite using a sql.DB opened with the modernc.org/sqlite driver.
func NewEngineFromSQLite(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), sqliteDialect, options...)
}

func newEngine(db adapters.DBAdapter, d dialect, options ...Option) (*Engine, error) {
	e := &Engine{
		db:               db,
		dialect:          d,
		authorsTableName: defaultAuthorsTableName,
		booksTableName:   defaultBooksTableName,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	stmts, err := buildStatements(e.dialect, e.authorsTableName, e.booksTableName)
	if err != nil {
		return nil, err
	}

	e.stmts = stmts

	return e, nil
}

// EnsureSchema creates the authors and books tables if they do not exist yet.
// On PostgreSQL it also adds the sequence_number column to tables created without it.
// It is safe to call on every startup.
func (e *Engine) EnsureSchema(ctx context.Context) error {
	observer, ctx := e.observe(ctx, operationEnsureSchema, nil)
	start := time.Now()

	fail := func(err error, args ...any) error {
		e.logError(ctx, logMsgEnsureSchemaFailed, err, args...)
		observer.finishError(err, time.Since(start))

		return errors.Join(catalog.ErrEnsuringSchemaFailed, err)
	}

	tx, err := e.db.BeginTx(ctx, false)
	if err != nil {
		return fail(errors.Join(catalog.ErrBeginningTxFailed, err))
	}
	defer e.rollback(ctx, tx)

	for _, stmt := range e.stmts.schema {
		stmtStart := time.Now()
		_, execErr := tx.Exec(ctx, stmt)
		e.logQueryWithDuration(ctx, stmt.SQL, logActionEnsureSchema, time.Since(stmtStart))

		if execErr != nil {
			return fail(execErr, logAttrQuery, stmt.SQL)
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fail(errors.Join(catalog.ErrCommittingTxFailed, commitErr))
	}

	duration := time.Since(start)
	e.logOperation(ctx, logMsgSchemaEnsured, logAttrDurationMS, e.toMilliseconds(duration))
	observer.finishSuccess(duration, nil)

	return nil
}

// Close releases the prepared statements. The database handle stays open, it belongs to the caller.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		e.logWarning(context.Background(), logMsgCloseStatementsFailed, err)
		return err
	}

	return nil
}

// exec runs a single write statement in its own read-write transaction and commits it.
func (e *Engine) exec(ctx context.Context, stmt adapters.Statement, action string, args ...any) (time.Duration, error) {
	if err := e.db.Prepare(ctx, stmt); err != nil {
		return 0, errors.Join(catalog.ErrPreparingStmtFailed, err)
	}

	tx, err := e.db.BeginTx(ctx, false)
	if err != nil {
		return 0, errors.Join(catalog.ErrBeginningTxFailed, err)
	}
	defer e.rollback(ctx, tx)

	start := time.Now()
	_, execErr := tx.Exec(ctx, stmt, args...)
	if execErr == nil {
		execErr = tx.Commit(ctx)
	}
	duration := time.Since(start)
	e.logQueryWithDuration(ctx, stmt.SQL, action, duration)

	return duration, execErr
}

// query runs a single read statement in a read-only transaction and hands every row to scanRow.
func (e *Engine) query(
	ctx context.Context,
	stmt adapters.Statement,
	action string,
	scanRow func(rows adapters.DBRows) error,
	args ...any,
) (time.Duration, error) {
	if err := e.db.Prepare(ctx, stmt); err != nil {
		return 0, errors.Join(catalog.ErrPreparingStmtFailed, err)
	}

	tx, err := e.db.BeginTx(ctx, true)
	if err != nil {
		return 0, errors.Join(catalog.ErrBeginningTxFailed, err)
	}
	defer e.rollback(ctx, tx)

	start := time.Now()
	rows, queryErr := tx.Query(ctx, stmt, args...)
	if queryErr == nil {
		queryErr = e.scanAll(ctx, rows, scanRow)
	}
	duration := time.Since(start)
	e.logQueryWithDuration(ctx, stmt.SQL, action, duration)

	if queryErr != nil {
		return duration, queryErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return duration, errors.Join(catalog.ErrCommittingTxFailed, commitErr)
	}

	return duration, nil
}

// scanAll iterates all rows and always closes them.
func (e *Engine) scanAll(ctx context.Context, rows adapters.DBRows, scanRow func(rows adapters.DBRows) error) error {
	defer e.closeRows(ctx, rows)

	for rows.Next() {
		if err := scanRow(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarning(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// rollback ends a transaction that was not committed, it does nothing for committed ones.
func (e *Engine) rollback(ctx context.Context, tx adapters.DBTx) {
	if err := tx.Rollback(ctx); err != nil {
		e.logWarning(ctx, logMsgRollbackFailed, err)
	}
}

// writeFailed maps a failed write to catalog.ErrConstraintViolation or to the given sentinel,
// and finishes the observation of the write accordingly.
func (e *Engine) writeFailed(
	ctx context.Context,
	observer *operationObserver,
	duration time.Duration,
	err error,
	sentinel error,
	message string,
	args ...any,
) error {
	if isConstraintViolation(err) {
		e.logOperation(ctx, logMsgConstraintViolation, append([]any{logAttrError, err.Error()}, args...)...)
		observer.finishConstraintViolation(duration)

		return errors.Join(catalog.ErrConstraintViolation, err)
	}

	e.logError(ctx, message, err, args...)
	observer.finishError(err, duration)

	return errors.Join(sentinel, err)
}
