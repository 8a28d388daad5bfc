package catalog

import (
	"context"

	"github.com/google/uuid"
)

// AuthorRepository persists and lists authors.
type AuthorRepository interface {
	SaveAuthor(ctx context.Context, author Author) error
	GetAuthors(ctx context.Context) (Authors, error)
}

// BookRepository persists and lists books.
// Queries that match nothing return an empty list and no error.
type BookRepository interface {
	SaveBook(ctx context.Context, book Book) error
	GetBooksByAuthorID(ctx context.Context, authorID uuid.UUID) (Books, error)
	GetBooks(ctx context.Context) (Books, error)
}
