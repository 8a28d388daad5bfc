package sqlengine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect import
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine/internal/adapters"
)

// dialect bundles what differs between the supported databases.
type dialect struct {
	goquDialect    string
	insertionOrder exp.Orderable
	schema         func(authorsTable, booksTable string) []string
}

var postgresDialect = dialect{
	goquDialect:    dialectPostgres,
	insertionOrder: goqu.I(colSequenceNumber),
	schema:         postgresSchema,
}

var sqliteDialect = dialect{
	goquDialect:    dialectSQLite,
	insertionOrder: goqu.L(colRowID),
	schema:         sqliteSchema,
}

// postgresSchema keeps the column layout of the catalog tables and adds a sequence_number
// column, because PostgreSQL gives no ordering guarantee without one.
func postgresSchema(authorsTable, booksTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	name VARCHAR(100) UNIQUE NOT NULL,
	sequence_number BIGSERIAL NOT NULL
)`, quoteIdent(authorsTable)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	author_id UUID NOT NULL,
	title VARCHAR(100) NOT NULL,
	publication_year INTEGER NOT NULL,
	sequence_number BIGSERIAL NOT NULL
)`, quoteIdent(booksTable)),
		addSequenceNumber(authorsTable),
		addSequenceNumber(booksTable),
	}
}

// addSequenceNumber upgrades tables that were created without the sequence_number column.
// Existing rows are numbered in physical order. Some PostgreSQL versions create the backing
// sequence before checking IF NOT EXISTS, which leaves an unused sequence behind on every run.
func addSequenceNumber(table string) string {
	return fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN IF NOT EXISTS sequence_number BIGSERIAL NOT NULL",
		quoteIdent(table),
	)
}

// sqliteSchema stores ids as text; insertion order comes from the implicit rowid.
func sqliteSchema(authorsTable, booksTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY NOT NULL,
	name VARCHAR(100) UNIQUE NOT NULL
)`, quoteIdent(authorsTable)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY NOT NULL,
	author_id TEXT NOT NULL,
	title VARCHAR(100) NOT NULL,
	publication_year INTEGER NOT NULL
)`, quoteIdent(booksTable)),
	}
}

// quoteIdent quotes every dot separated part of name on its own, the same way goqu renders
// table identifiers, so "main.authors" addresses table authors in schema main.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}

	return strings.Join(parts, ".")
}

// statements holds every SQL statement the Engine runs, built once per Engine.
type statements struct {
	schema              []adapters.Statement
	insertAuthor        adapters.Statement
	selectAuthors       adapters.Statement
	insertBook          adapters.Statement
	selectBooksByAuthor adapters.Statement
	selectBooks         adapters.Statement
}

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// buildStatements renders all statements in goqu's prepared mode, so every value becomes a placeholder.
// The values passed to the builders only determine the placeholder positions.
func buildStatements(d dialect, authorsTable, booksTable string) (statements, error) {
	builder := goqu.Dialect(d.goquDialect)
	stmts := statements{}

	for _, ddl := range d.schema(authorsTable, booksTable) {
		stmts.schema = append(stmts.schema, adapters.Statement{SQL: ddl})
	}

	var err error
	var errs []error

	stmts.insertAuthor, err = toStatement(
		statementName(authorsTable, stmtInsert),
		builder.Insert(authorsTable).
			Prepared(true).
			Cols(colID, colName).
			Vals(goqu.Vals{"", ""}),
	)
	errs = append(errs, err)

	stmts.selectAuthors, err = toStatement(
		statementName(authorsTable, stmtSelectAll),
		builder.From(authorsTable).
			Prepared(true).
			Select(colID, colName).
			Order(d.insertionOrder.Asc()),
	)
	errs = append(errs, err)

	stmts.insertBook, err = toStatement(
		statementName(booksTable, stmtInsert),
		builder.Insert(booksTable).
			Prepared(true).
			Cols(colID, colAuthorID, colTitle, colPublicationYear).
			Vals(goqu.Vals{"", "", "", 0}),
	)
	errs = append(errs, err)

	stmts.selectBooksByAuthor, err = toStatement(
		statementName(booksTable, stmtSelectByAuthor),
		builder.From(booksTable).
			Prepared(true).
			Select(colID, colAuthorID, colTitle, colPublicationYear).
			Where(goqu.C(colAuthorID).Eq("")).
			Order(d.insertionOrder.Asc()),
	)
	errs = append(errs, err)

	stmts.selectBooks, err = toStatement(
		statementName(booksTable, stmtSelectAll),
		builder.From(booksTable).
			Prepared(true).
			Select(colID, colAuthorID, colTitle, colPublicationYear).
			Order(d.insertionOrder.Asc()),
	)
	errs = append(errs, err)

	if joined := errors.Join(errs...); joined != nil {
		return statements{}, errors.Join(catalog.ErrBuildingQueryFailed, joined)
	}

	return stmts, nil
}

func toStatement(name string, ds sqlBuilder) (adapters.Statement, error) {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return adapters.Statement{}, err
	}

	return adapters.Statement{Name: name, SQL: sqlQuery}, nil
}

func statementName(tableName, kind string) string {
	return tableName + "_" + kind
}
