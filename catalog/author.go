package catalog

import "github.com/google/uuid"

// Author is a writer in the catalog. Names are unique across all authors.
type Author struct {
	ID   uuid.UUID
	Name string
}

// Authors is a list of authors in insertion order.
type Authors = []Author

// BuildAuthor creates an Author from its parts.
func BuildAuthor(id uuid.UUID, name string) Author {
	return Author{ID: id, Name: name}
}
