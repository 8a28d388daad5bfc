package catalog

import (
	"errors"

	"github.com/google/uuid"
)

// NewID returns a new random identifier for an author or a book.
func NewID() uuid.UUID {
	return uuid.New()
}

// ParseID parses the canonical 36 character text form of an identifier.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidID, err)
	}

	return id, nil
}
