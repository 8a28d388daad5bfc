package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service is the facade the command layer talks to.
// It forwards every call to the configured repositories without adding behavior.
type Service struct {
	authors AuthorRepository
	books   BookRepository
}

// NewService creates a Service from an AuthorRepository and a BookRepository.
func NewService(authors AuthorRepository, books BookRepository) (*Service, error) {
	if authors == nil || books == nil {
		return nil, ErrNilRepository
	}

	return &Service{authors: authors, books: books}, nil
}

// SaveAuthor persists a new author.
func (s *Service) SaveAuthor(ctx context.Context, author Author) error {
	return s.authors.SaveAuthor(ctx, author)
}

// GetAuthors lists all authors.
func (s *Service) GetAuthors(ctx context.Context) (Authors, error) {
	return s.authors.GetAuthors(ctx)
}

// SaveBook persists a new book.
func (s *Service) SaveBook(ctx context.Context, book Book) error {
	return s.books.SaveBook(ctx, book)
}

// GetBooksByAuthorID lists the books of one author.
func (s *Service) GetBooksByAuthorID(ctx context.Context, authorID uuid.UUID) (Books, error) {
	return s.books.GetBooksByAuthorID(ctx, authorID)
}

// GetBooks lists all books.
func (s *Service) GetBooks(ctx context.Context) (Books, error) {
	return s.books.GetBooks(ctx)
}
