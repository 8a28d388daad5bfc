package helper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
)

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewRandom()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

func FixtureAuthor(t testing.TB, name string) catalog.Author {
	return catalog.BuildAuthor(GivenUniqueID(t), name)
}

func FixtureBook(t testing.TB, authorID uuid.UUID, title string, publicationYear int) catalog.Book {
	return catalog.BuildBook(GivenUniqueID(t), authorID, title, publicationYear)
}

func GivenAuthorWasSaved(t testing.TB, ctx context.Context, engine *sqlengine.Engine, name string) catalog.Author {
	author := FixtureAuthor(t, name)
	err := engine.InsertAuthor(ctx, author)
	assert.NoError(t, err, "error in arranging test data")

	return author
}

func GivenBookWasSaved(
	t testing.TB,
	ctx context.Context,
	engine *sqlengine.Engine,
	authorID uuid.UUID,
	title string,
	publicationYear int,
) catalog.Book {

	book := FixtureBook(t, authorID, title, publicationYear)
	err := engine.InsertBook(ctx, book)
	assert.NoError(t, err, "error in arranging test data")

	return book
}
