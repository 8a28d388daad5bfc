package sqlwrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
	"github.com/AntonStoeckl/bookcatalog/testutil/sqlengine/config"
)

// Engine type constants
const (
	typeSQLite  = "sqlite"
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

const (
	defaultAuthorsTable = "authors"
	defaultBooksTable   = "books"
)

// Wrapper interface to abstract over different handle types
type Wrapper interface {
	GetEngine() *sqlengine.Engine
	Close()
}

type tables struct {
	authors string
	books   string
}

// SQLiteWrapper wraps SQLite-based testing
type SQLiteWrapper struct {
	db     *sql.DB
	engine *sqlengine.Engine
	tables tables
}

func (w *SQLiteWrapper) GetEngine() *sqlengine.Engine {
	return w.engine
}

func (w *SQLiteWrapper) Close() {
	_ = w.engine.Close()
	_ = w.db.Close() // ignore error
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool   *pgxpool.Pool
	engine *sqlengine.Engine
	tables tables
}

func (w *PGXPoolWrapper) GetEngine() *sqlengine.Engine {
	return w.engine
}

func (w *PGXPoolWrapper) Close() {
	_ = w.engine.Close()
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db     *sql.DB
	engine *sqlengine.Engine
	tables tables
}

func (w *SQLDBWrapper) GetEngine() *sqlengine.Engine {
	return w.engine
}

func (w *SQLDBWrapper) Close() {
	_ = w.engine.Close()
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db     *sqlx.DB
	engine *sqlengine.Engine
	tables tables
}

func (w *SQLXWrapper) GetEngine() *sqlengine.Engine {
	return w.engine
}

func (w *SQLXWrapper) Close() {
	_ = w.engine.Close()
	_ = w.db.Close() // ignore error
}

func adapterTypeFromEnv() string {
	return strings.ToLower(os.Getenv("ADAPTER_TYPE"))
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the environment variable,
// with the default table names and the schema in place.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	return createWrapper(t, tables{authors: defaultAuthorsTable, books: defaultBooksTable}, options...)
}

// CreateWrapperWithTableNames is like CreateWrapperWithTestConfig, but with custom table names.
func CreateWrapperWithTableNames(t testing.TB, authorsTable, booksTable string, options ...sqlengine.Option) Wrapper {
	options = append(
		options,
		sqlengine.WithAuthorsTableName(authorsTable),
		sqlengine.WithBooksTableName(booksTable),
	)

	return createWrapper(t, tables{authors: authorsTable, books: booksTable}, options...)
}

// TryCreateEngine tries to create an engine with the given options and returns the error (for testing error cases).
func TryCreateEngine(t testing.TB, options ...sqlengine.Option) error {
	switch adapterType := adapterTypeFromEnv(); adapterType {
	case typeSQLite, "":
		db := config.SQLiteTestConfig(t.TempDir())
		defer func(db *sql.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := sqlengine.NewEngineFromSQLite(db, options...)
		return err

	case typePGXPool:
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolTestConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")
		defer connPool.Close()

		_, err = sqlengine.NewEngineFromPGXPool(connPool, options...)
		return err

	case typeSQLDB:
		db := config.PostgresSQLDBTestConfig()
		defer func(db *sql.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := sqlengine.NewEngineFromSQLDB(db, options...)
		return err

	case typeSQLXDB:
		db := config.PostgresSQLXTestConfig()
		defer func(db *sqlx.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := sqlengine.NewEngineFromSQLX(db, options...)
		return err

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}
}

func createWrapper(t testing.TB, tbls tables, options ...sqlengine.Option) Wrapper {
	var wrapper Wrapper

	switch adapterType := adapterTypeFromEnv(); adapterType {
	case typeSQLite, "":
		db := config.SQLiteTestConfig(t.TempDir())
		engine, err := sqlengine.NewEngineFromSQLite(db, options...)
		assert.NoError(t, err, "error creating engine")
		wrapper = &SQLiteWrapper{db: db, engine: engine, tables: tbls}

	case typePGXPool:
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolTestConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")
		engine, err := sqlengine.NewEngineFromPGXPool(connPool, options...)
		assert.NoError(t, err, "error creating engine")
		wrapper = &PGXPoolWrapper{pool: connPool, engine: engine, tables: tbls}

	case typeSQLDB:
		db := config.PostgresSQLDBTestConfig()
		engine, err := sqlengine.NewEngineFromSQLDB(db, options...)
		assert.NoError(t, err, "error creating engine")
		wrapper = &SQLDBWrapper{db: db, engine: engine, tables: tbls}

	case typeSQLXDB:
		db := config.PostgresSQLXTestConfig()
		engine, err := sqlengine.NewEngineFromSQLX(db, options...)
		assert.NoError(t, err, "error creating engine")
		wrapper = &SQLXWrapper{db: db, engine: engine, tables: tbls}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	err := wrapper.GetEngine().EnsureSchema(context.Background())
	assert.NoError(t, err, "error ensuring the schema in test setup")

	return wrapper
}

// CleanUp empties the authors and books tables for the given wrapper
func CleanUp(t testing.TB, wrapper Wrapper) {
	switch w := wrapper.(type) {
	case *SQLiteWrapper:
		for _, table := range []string{w.tables.authors, w.tables.books} {
			_, err := w.db.Exec(fmt.Sprintf(`DELETE FROM %s`, quoteTable(table)))
			assert.NoError(t, err, "error cleaning up the %s table", table)
		}

	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), truncateStatement(w.tables))
		assert.NoError(t, err, "error cleaning up the catalog tables")

	case *SQLDBWrapper:
		_, err := w.db.Exec(truncateStatement(w.tables))
		assert.NoError(t, err, "error cleaning up the catalog tables")

	case *SQLXWrapper:
		_, err := w.db.Exec(truncateStatement(w.tables))
		assert.NoError(t, err, "error cleaning up the catalog tables")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

func truncateStatement(tbls tables) string {
	return fmt.Sprintf(`TRUNCATE TABLE %s, %s RESTART IDENTITY`, quoteTable(tbls.authors), quoteTable(tbls.books))
}

// quoteTable quotes each part of a possibly schema qualified table name.
func quoteTable(table string) string {
	return `"` + strings.ReplaceAll(table, ".", `"."`) + `"`
}

// SchemaQualifiedTableName prefixes table with the default schema of the database selected by ADAPTER_TYPE.
func SchemaQualifiedTableName(table string) string {
	if adapterType := adapterTypeFromEnv(); adapterType == typeSQLite || adapterType == "" {
		return "main." + table
	}

	return "public." + table
}

// IsPostgres reports whether the wrapper runs against PostgreSQL.
func IsPostgres(wrapper Wrapper) bool {
	_, isSQLite := wrapper.(*SQLiteWrapper)

	return !isSQLite
}

// ExecRaw runs a statement directly on the database handle of the wrapper, bypassing the engine.
func ExecRaw(t testing.TB, wrapper Wrapper, statement string) {
	var err error

	switch w := wrapper.(type) {
	case *SQLiteWrapper:
		_, err = w.db.Exec(statement)

	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), statement)

	case *SQLDBWrapper:
		_, err = w.db.Exec(statement)

	case *SQLXWrapper:
		_, err = w.db.Exec(statement)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error in arranging test data")
}

// CountRows counts the rows of a table for the given wrapper
func CountRows(t testing.TB, wrapper Wrapper, table string) int {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, quoteTable(table))

	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *SQLiteWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query).Scan(&cnt)

	case *SQLDBWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	case *SQLXWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error counting rows")

	return cnt
}

// InsertRawAuthor bypasses the engine to store a row with an arbitrary id text, e.g. to provoke parse errors.
func InsertRawAuthor(t testing.TB, wrapper Wrapper, id string, name string) {
	var err error

	switch w := wrapper.(type) {
	case *SQLiteWrapper:
		_, err = w.db.Exec(fmt.Sprintf(`INSERT INTO %s (id, name) VALUES (?, ?)`, quoteTable(w.tables.authors)), id, name)

	default:
		t.Skipf("raw author inserts with arbitrary ids are only possible with sqlite, not with %T", w)
	}

	assert.NoError(t, err, "error in arranging test data")
}
