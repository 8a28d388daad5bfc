package catalog

import "github.com/google/uuid"

// Book belongs to exactly one Author.
// The author has to exist when the book is saved; storage does not check it.
type Book struct {
	ID              uuid.UUID
	AuthorID        uuid.UUID
	Title           string
	PublicationYear int
}

// Books is a list of books in insertion order.
type Books = []Book

// BuildBook creates a Book from its parts.
func BuildBook(id uuid.UUID, authorID uuid.UUID, title string, publicationYear int) Book {
	return Book{
		ID:              id,
		AuthorID:        authorID,
		Title:           title,
		PublicationYear: publicationYear,
	}
}
