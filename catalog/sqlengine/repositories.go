package sqlengine

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/bookcatalog/catalog"
)

var (
	_ catalog.AuthorRepository = (*AuthorRepository)(nil)
	_ catalog.BookRepository   = (*BookRepository)(nil)
)

// AuthorRepository implements catalog.AuthorRepository on top of an Engine.
type AuthorRepository struct {
	engine *Engine
}

// NewAuthorRepository creates an AuthorRepository for the given Engine.
func NewAuthorRepository(engine *Engine) *AuthorRepository {
	return &AuthorRepository{engine: engine}
}

func (r *AuthorRepository) SaveAuthor(ctx context.Context, author catalog.Author) error {
	return r.engine.InsertAuthor(ctx, author)
}

func (r *AuthorRepository) GetAuthors(ctx context.Context) (catalog.Authors, error) {
	return r.engine.SelectAuthors(ctx)
}

// BookRepository implements catalog.BookRepository on top of an Engine.
type BookRepository struct {
	engine *Engine
}

// NewBookRepository creates a BookRepository for the given Engine.
func NewBookRepository(engine *Engine) *BookRepository {
	return &BookRepository{engine: engine}
}

func (r *BookRepository) SaveBook(ctx context.Context, book catalog.Book) error {
	return r.engine.InsertBook(ctx, book)
}

func (r *BookRepository) GetBooksByAuthorID(ctx context.Context, authorID uuid.UUID) (catalog.Books, error) {
	return r.engine.SelectBooksByAuthorID(ctx, authorID)
}

func (r *BookRepository) GetBooks(ctx context.Context) (catalog.Books, error) {
	return r.engine.SelectBooks(ctx)
}
