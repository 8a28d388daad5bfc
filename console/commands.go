package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/bookcatalog/catalog"
)

const (
	CommandHelp            = "Help"
	CommandAddAuthor       = "AddAuthor"
	CommandShowAuthors     = "ShowAuthors"
	CommandAddBook         = "AddBook"
	CommandShowAuthorBooks = "ShowAuthorBooks"
	CommandShowBooks       = "ShowBooks"

	msgFailedToAddAuthor   = "Failed to add author"
	msgFailedToAddBook     = "Failed to add book"
	msgFailedToLoadAuthors = "Failed to load authors"
	msgFailedToLoadBooks   = "Failed to load books"
	msgSelectAuthor        = "Select author:"
	msgEnterAuthorNumber   = "Enter author # or empty line to cancel"
	headerBooks            = "Books:"
)

var (
	// ErrNilCatalog is returned when RegisterCatalogCommands is called without a Catalog.
	ErrNilCatalog = errors.New("catalog must not be nil")

	// ErrUnsupportedOutputFormat is returned for output formats other than text and json.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")
)

// Catalog is what the catalog commands need, *catalog.Service satisfies it.
type Catalog interface {
	SaveAuthor(ctx context.Context, author catalog.Author) error
	GetAuthors(ctx context.Context) (catalog.Authors, error)
	SaveBook(ctx context.Context, book catalog.Book) error
	GetBooksByAuthorID(ctx context.Context, authorID uuid.UUID) (catalog.Books, error)
	GetBooks(ctx context.Context) (catalog.Books, error)
}

// CommandOption configures the catalog commands.
type CommandOption func(*catalogCommands) error

// WithOutputFormat sets how lists are printed, the default is OutputText.
func WithOutputFormat(format OutputFormat) CommandOption {
	return func(c *catalogCommands) error {
		if !format.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnsupportedOutputFormat, format)
		}

		c.renderer = newRenderer(format)

		return nil
	}
}

// WithIDGenerator replaces catalog.NewID as the source of new author and book ids.
func WithIDGenerator(newID func() uuid.UUID) CommandOption {
	return func(c *catalogCommands) error {
		c.newID = newID
		return nil
	}
}

type catalogCommands struct {
	handler  *Handler
	catalog  Catalog
	renderer renderer
	newID    func() uuid.UUID
}

// RegisterCatalogCommands adds the catalog commands to the handler.
func RegisterCatalogCommands(handler *Handler, cat Catalog, options ...CommandOption) error {
	if cat == nil {
		return ErrNilCatalog
	}

	c := &catalogCommands{
		handler:  handler,
		catalog:  cat,
		renderer: textRenderer{},
		newID:    catalog.NewID,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return err
		}
	}

	handler.AddAction(CommandHelp, "", "Show list of commands and their description", c.help)
	handler.AddAction(CommandAddAuthor, "<name>", "Add an author in database", c.addAuthor)
	handler.AddAction(CommandShowAuthors, "", "Show list of authors", c.showAuthors)
	handler.AddAction(CommandAddBook, "<publish year> <title>", "Add a book in database", c.addBook)
	handler.AddAction(CommandShowAuthorBooks, "", "Show list of books by current author", c.showAuthorBooks)
	handler.AddAction(CommandShowBooks, "", "Show list of books", c.showBooks)

	return nil
}

func (c *catalogCommands) help(_ context.Context, _ string, session *Session) error {
	c.handler.PrintCommandsInfo(session.Writer())
	return nil
}

func (c *catalogCommands) addAuthor(ctx context.Context, args string, session *Session) error {
	name := strings.TrimSpace(args)
	if name == "" {
		session.Println(msgFailedToAddAuthor)
		return nil
	}

	if err := c.catalog.SaveAuthor(ctx, catalog.BuildAuthor(c.newID(), name)); err != nil {
		session.Println(msgFailedToAddAuthor)
	}

	return nil
}

func (c *catalogCommands) showAuthors(ctx context.Context, _ string, session *Session) error {
	authors, err := c.catalog.GetAuthors(ctx)
	if err != nil {
		session.Println(msgFailedToLoadAuthors)
		return nil
	}

	return c.renderer.renderAuthors(session.Writer(), authors)
}

func (c *catalogCommands) addBook(ctx context.Context, args string, session *Session) error {
	yearField, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	year, err := strconv.Atoi(yearField)
	title := strings.TrimSpace(rest)
	if err != nil || title == "" {
		session.Println(msgFailedToAddBook)
		return nil
	}

	author, selected, err := c.selectAuthor(ctx, session)
	if err != nil || !selected {
		return err
	}

	if saveErr := c.catalog.SaveBook(ctx, catalog.BuildBook(c.newID(), author.ID, title, year)); saveErr != nil {
		session.Println(msgFailedToAddBook)
	}

	return nil
}

func (c *catalogCommands) showAuthorBooks(ctx context.Context, _ string, session *Session) error {
	author, selected, err := c.selectAuthor(ctx, session)
	if err != nil || !selected {
		return err
	}

	books, err := c.catalog.GetBooksByAuthorID(ctx, author.ID)
	if err != nil {
		session.Println(msgFailedToLoadBooks)
		return nil
	}

	return c.renderer.renderBooks(session.Writer(), "", books)
}

func (c *catalogCommands) showBooks(ctx context.Context, _ string, session *Session) error {
	books, err := c.catalog.GetBooks(ctx)
	if err != nil {
		session.Println(msgFailedToLoadBooks)
		return nil
	}

	return c.renderer.renderBooks(session.Writer(), headerBooks, books)
}

// selectAuthor lists the authors and reads the user's choice.
// It reports false without an error when there are no authors or the user cancels.
func (c *catalogCommands) selectAuthor(ctx context.Context, session *Session) (catalog.Author, bool, error) {
	authors, err := c.catalog.GetAuthors(ctx)
	if err != nil {
		session.Println(msgFailedToLoadAuthors)
		return catalog.Author{}, false, nil
	}

	if len(authors) == 0 {
		return catalog.Author{}, false, nil
	}

	session.Println(msgSelectAuthor)
	for i, author := range authors {
		session.Printf("%d %s\n", i+1, author.Name)
	}
	session.Println(msgEnterAuthorNumber)

	line, err := session.ReadLine()
	if err != nil {
		return catalog.Author{}, false, nil //nolint:nilerr // exhausted input cancels the selection
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(authors) {
		return catalog.Author{}, false, nil
	}

	return authors[choice-1], true, nil
}
