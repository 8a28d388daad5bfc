package sqlengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BuildStatements_RendersParameterizedSQL(t *testing.T) {
	testCases := []struct {
		name                        string
		dialect                     dialect
		expectedInsertAuthor        string
		expectedSelectAuthors       string
		expectedInsertBook          string
		expectedSelectBooksByAuthor string
		expectedSelectBooks         string
		expectedSchemaLen           int
	}{
		{
			name:                        "postgres",
			dialect:                     postgresDialect,
			expectedInsertAuthor:        `INSERT INTO "authors" ("id", "name") VALUES ($1, $2)`,
			expectedSelectAuthors:       `SELECT "id", "name" FROM "authors" ORDER BY "sequence_number" ASC`,
			expectedInsertBook:          `INSERT INTO "books" ("id", "author_id", "title", "publication_year") VALUES ($1, $2, $3, $4)`,
			expectedSelectBooksByAuthor: `SELECT "id", "author_id", "title", "publication_year" FROM "books" WHERE ("author_id" = $1) ORDER BY "sequence_number" ASC`,
			expectedSelectBooks:         `SELECT "id", "author_id", "title", "publication_year" FROM "books" ORDER BY "sequence_number" ASC`,
			expectedSchemaLen:           4,
		},
		{
			name:                        "sqlite",
			dialect:                     sqliteDialect,
			expectedInsertAuthor:        "INSERT INTO `authors` (`id`, `name`) VALUES (?, ?)",
			expectedSelectAuthors:       "SELECT `id`, `name` FROM `authors` ORDER BY rowid ASC",
			expectedInsertBook:          "INSERT INTO `books` (`id`, `author_id`, `title`, `publication_year`) VALUES (?, ?, ?, ?)",
			expectedSelectBooksByAuthor: "SELECT `id`, `author_id`, `title`, `publication_year` FROM `books` WHERE (`author_id` = ?) ORDER BY rowid ASC",
			expectedSelectBooks:         "SELECT `id`, `author_id`, `title`, `publication_year` FROM `books` ORDER BY rowid ASC",
			expectedSchemaLen:           2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			stmts, err := buildStatements(tc.dialect, "authors", "books")

			// assert
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedInsertAuthor, stmts.insertAuthor.SQL)
			assert.Equal(t, tc.expectedSelectAuthors, stmts.selectAuthors.SQL)
			assert.Equal(t, tc.expectedInsertBook, stmts.insertBook.SQL)
			assert.Equal(t, tc.expectedSelectBooksByAuthor, stmts.selectBooksByAuthor.SQL)
			assert.Equal(t, tc.expectedSelectBooks, stmts.selectBooks.SQL)
			assert.Len(t, stmts.schema, tc.expectedSchemaLen)
		})
	}
}

func Test_BuildStatements_NamesStatementsPerTable(t *testing.T) {
	// act
	stmts, err := buildStatements(postgresDialect, "my_authors", "my_books")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "my_authors_insert", stmts.insertAuthor.Name)
	assert.Equal(t, "my_authors_select_all", stmts.selectAuthors.Name)
	assert.Equal(t, "my_books_insert", stmts.insertBook.Name)
	assert.Equal(t, "my_books_select_by_author", stmts.selectBooksByAuthor.Name)
	assert.Equal(t, "my_books_select_all", stmts.selectBooks.Name)

	for _, ddl := range stmts.schema {
		assert.False(t, ddl.IsPrepared(), "schema statements are not prepared")
	}
	assert.Contains(t, stmts.schema[0].SQL, `CREATE TABLE IF NOT EXISTS "my_authors"`)
	assert.Contains(t, stmts.schema[1].SQL, `CREATE TABLE IF NOT EXISTS "my_books"`)
}

func Test_BuildStatements_UpgradesPostgresTablesWithoutSequenceNumber(t *testing.T) {
	// act
	stmts, err := buildStatements(postgresDialect, "my_authors", "my_books")

	// assert
	assert.NoError(t, err)
	assert.Equal(t,
		`ALTER TABLE "my_authors" ADD COLUMN IF NOT EXISTS sequence_number BIGSERIAL NOT NULL`,
		stmts.schema[2].SQL,
	)
	assert.Equal(t,
		`ALTER TABLE "my_books" ADD COLUMN IF NOT EXISTS sequence_number BIGSERIAL NOT NULL`,
		stmts.schema[3].SQL,
	)
}

func Test_BuildStatements_QualifiedTableNamesMatchBetweenSchemaAndQueries(t *testing.T) {
	// act
	stmts, err := buildStatements(postgresDialect, "public.my_authors", "public.my_books")

	// assert
	assert.NoError(t, err)
	assert.Contains(t, stmts.schema[0].SQL, `CREATE TABLE IF NOT EXISTS "public"."my_authors"`)
	assert.Contains(t, stmts.schema[1].SQL, `CREATE TABLE IF NOT EXISTS "public"."my_books"`)
	assert.Contains(t, stmts.insertAuthor.SQL, `INSERT INTO "public"."my_authors"`)
	assert.Contains(t, stmts.selectBooks.SQL, `FROM "public"."my_books"`)
}

func Test_QuoteIdent(t *testing.T) {
	assert.Equal(t, `"authors"`, quoteIdent("authors"))
	assert.Equal(t, `"odd""name"`, quoteIdent(`odd"name`))
	assert.Equal(t, `"main"."authors"`, quoteIdent("main.authors"))
}
