package memengine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/bookcatalog/catalog"
)

var (
	_ catalog.AuthorRepository = (*Store)(nil)
	_ catalog.BookRepository   = (*Store)(nil)
)

// Store keeps authors and books in insertion order. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	authors     catalog.Authors
	books       catalog.Books
	authorIDs   map[uuid.UUID]struct{}
	authorNames map[string]struct{}
	bookIDs     map[uuid.UUID]struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		authors:     make(catalog.Authors, 0),
		books:       make(catalog.Books, 0),
		authorIDs:   make(map[uuid.UUID]struct{}),
		authorNames: make(map[string]struct{}),
		bookIDs:     make(map[uuid.UUID]struct{}),
	}
}

// SaveAuthor stores an author. Duplicate ids or names fail with catalog.ErrConstraintViolation.
func (s *Store) SaveAuthor(ctx context.Context, author catalog.Author) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(catalog.ErrSavingAuthorFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authorIDs[author.ID]; ok {
		return errors.Join(catalog.ErrConstraintViolation, fmt.Errorf("author id %s already exists", author.ID))
	}

	if _, ok := s.authorNames[author.Name]; ok {
		return errors.Join(catalog.ErrConstraintViolation, fmt.Errorf("author name %q already exists", author.Name))
	}

	s.authors = append(s.authors, author)
	s.authorIDs[author.ID] = struct{}{}
	s.authorNames[author.Name] = struct{}{}

	return nil
}

// GetAuthors returns a copy of all authors in insertion order.
func (s *Store) GetAuthors(ctx context.Context) (catalog.Authors, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(catalog.ErrQueryingAuthorsFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := make(catalog.Authors, len(s.authors))
	copy(authors, s.authors)

	return authors, nil
}

// SaveBook stores a book. A duplicate id fails with catalog.ErrConstraintViolation.
func (s *Store) SaveBook(ctx context.Context, book catalog.Book) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(catalog.ErrSavingBookFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookIDs[book.ID]; ok {
		return errors.Join(catalog.ErrConstraintViolation, fmt.Errorf("book id %s already exists", book.ID))
	}

	s.books = append(s.books, book)
	s.bookIDs[book.ID] = struct{}{}

	return nil
}

// GetBooksByAuthorID returns the books of one author in insertion order.
func (s *Store) GetBooksByAuthorID(ctx context.Context, authorID uuid.UUID) (catalog.Books, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(catalog.ErrQueryingBooksFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make(catalog.Books, 0)
	for _, book := range s.books {
		if book.AuthorID == authorID {
			books = append(books, book)
		}
	}

	return books, nil
}

// GetBooks returns a copy of all books in insertion order.
func (s *Store) GetBooks(ctx context.Context) (catalog.Books, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(catalog.ErrQueryingBooksFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make(catalog.Books, len(s.books))
	copy(books, s.books)

	return books, nil
}
