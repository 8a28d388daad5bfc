package sqlengine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine/internal/adapters"
)

// InsertBook stores one book and commits immediately.
// The author is not checked, there is no foreign key between the tables.
func (e *Engine) InsertBook(ctx context.Context, book catalog.Book) error {
	observer, ctx := e.observe(ctx, operationInsertBook, map[string]string{
		spanAttrBookID:   book.ID.String(),
		spanAttrAuthorID: book.AuthorID.String(),
	})

	duration, err := e.exec(
		ctx,
		e.stmts.insertBook,
		logActionInsertBook,
		book.ID.String(), book.AuthorID.String(), book.Title, book.PublicationYear,
	)

	if err != nil {
		return e.writeFailed(
			ctx, observer, duration, err,
			catalog.ErrSavingBookFailed, logMsgInsertBookFailed, logAttrBookID, book.ID.String(),
		)
	}

	e.logOperation(
		ctx,
		logMsgBookInserted,
		logAttrBookID, book.ID.String(),
		logAttrAuthorID, book.AuthorID.String(),
		logAttrDurationMS, e.toMilliseconds(duration),
	)
	observer.finishInserted(metricBooksInserted, duration)

	return nil
}

// SelectBooksByAuthorID returns the books of one author in insertion order.
// An unknown author yields an empty list.
func (e *Engine) SelectBooksByAuthorID(ctx context.Context, authorID uuid.UUID) (catalog.Books, error) {
	observer, ctx := e.observe(ctx, operationSelectBooksByAuthor, map[string]string{spanAttrAuthorID: authorID.String()})

	return e.selectBooks(ctx, observer, e.stmts.selectBooksByAuthor, logActionSelectBooksByAuthor, authorID.String())
}

// SelectBooks returns all books in insertion order.
func (e *Engine) SelectBooks(ctx context.Context) (catalog.Books, error) {
	observer, ctx := e.observe(ctx, operationSelectBooks, nil)

	return e.selectBooks(ctx, observer, e.stmts.selectBooks, logActionSelectBooks)
}

func (e *Engine) selectBooks(
	ctx context.Context,
	observer *operationObserver,
	stmt adapters.Statement,
	action string,
	args ...any,
) (catalog.Books, error) {
	books := make(catalog.Books, 0)

	duration, err := e.query(ctx, stmt, action, func(rows adapters.DBRows) error {
		book, scanErr := scanBook(rows)
		if scanErr != nil {
			return scanErr
		}

		books = append(books, book)

		return nil
	}, args...)

	if err != nil {
		e.logError(ctx, logMsgSelectBooksFailed, err)
		observer.finishError(err, duration)

		return nil, errors.Join(catalog.ErrQueryingBooksFailed, err)
	}

	e.logOperation(
		ctx,
		logMsgBooksSelected,
		logAttrBookCount, len(books),
		logAttrDurationMS, e.toMilliseconds(duration),
	)
	observer.finishSelected(metricBooksSelected, spanAttrBookCount, len(books), duration)

	return books, nil
}

func scanBook(rows adapters.DBRows) (catalog.Book, error) {
	var id, authorID, title string
	var publicationYear int

	if err := rows.Scan(&id, &authorID, &title, &publicationYear); err != nil {
		return catalog.Book{}, errors.Join(catalog.ErrScanningDBRowFailed, err)
	}

	bookID, err := catalog.ParseID(id)
	if err != nil {
		return catalog.Book{}, err
	}

	bookAuthorID, err := catalog.ParseID(authorID)
	if err != nil {
		return catalog.Book{}, err
	}

	return catalog.BuildBook(bookID, bookAuthorID, title, publicationYear), nil
}
