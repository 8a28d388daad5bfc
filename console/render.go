package console

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/bookcatalog/catalog"
)

// OutputFormat selects how lists of authors and books are printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// IsValid reports whether f is a known output format.
func (f OutputFormat) IsValid() bool {
	return f == OutputText || f == OutputJSON
}

type renderer interface {
	renderAuthors(w io.Writer, authors catalog.Authors) error
	renderBooks(w io.Writer, header string, books catalog.Books) error
}

func newRenderer(format OutputFormat) renderer {
	if format == OutputJSON {
		return jsonRenderer{}
	}

	return textRenderer{}
}

type textRenderer struct{}

func (textRenderer) renderAuthors(w io.Writer, authors catalog.Authors) error {
	if len(authors) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "Authors:"); err != nil {
		return err
	}

	for i, author := range authors {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, author.Name); err != nil {
			return err
		}
	}

	return nil
}

func (textRenderer) renderBooks(w io.Writer, header string, books catalog.Books) error {
	if len(books) == 0 {
		return nil
	}

	if header != "" {
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
	}

	for i, book := range books {
		if _, err := fmt.Fprintf(w, "%d %s, %d\n", i+1, book.Title, book.PublicationYear); err != nil {
			return err
		}
	}

	return nil
}

type authorJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type bookJSON struct {
	ID              string `json:"id"`
	AuthorID        string `json:"author_id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
}

// jsonRenderer prints every list as one JSON array per line, empty lists as [].
type jsonRenderer struct{}

func (jsonRenderer) renderAuthors(w io.Writer, authors catalog.Authors) error {
	payload := make([]authorJSON, 0, len(authors))
	for _, author := range authors {
		payload = append(payload, authorJSON{ID: author.ID.String(), Name: author.Name})
	}

	return writeJSONLine(w, payload)
}

func (jsonRenderer) renderBooks(w io.Writer, _ string, books catalog.Books) error {
	payload := make([]bookJSON, 0, len(books))
	for _, book := range books {
		payload = append(payload, bookJSON{
			ID:              book.ID.String(),
			AuthorID:        book.AuthorID.String(),
			Title:           book.Title,
			PublicationYear: book.PublicationYear,
		})
	}

	return writeJSONLine(w, payload)
}

func writeJSONLine(w io.Writer, payload any) error {
	data, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
