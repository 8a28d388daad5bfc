package sqlengine

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine/internal/adapters"
)

// InsertAuthor stores one author and commits immediately.
// A duplicate name or id fails with catalog.ErrConstraintViolation.
func (e *Engine) InsertAuthor(ctx context.Context, author catalog.Author) error {
	observer, ctx := e.observe(ctx, operationInsertAuthor, map[string]string{spanAttrAuthorID: author.ID.String()})

	duration, err := e.exec(ctx, e.stmts.insertAuthor, logActionInsertAuthor, author.ID.String(), author.Name)
	if err != nil {
		return e.writeFailed(
			ctx, observer, duration, err,
			catalog.ErrSavingAuthorFailed, logMsgInsertAuthorFailed, logAttrAuthorID, author.ID.String(),
		)
	}

	e.logOperation(
		ctx,
		logMsgAuthorInserted,
		logAttrAuthorID, author.ID.String(),
		logAttrDurationMS, e.toMilliseconds(duration),
	)
	observer.finishInserted(metricAuthorsInserted, duration)

	return nil
}

// SelectAuthors returns all authors in insertion order.
func (e *Engine) SelectAuthors(ctx context.Context) (catalog.Authors, error) {
	observer, ctx := e.observe(ctx, operationSelectAuthors, nil)
	authors := make(catalog.Authors, 0)

	duration, err := e.query(ctx, e.stmts.selectAuthors, logActionSelectAuthors, func(rows adapters.DBRows) error {
		author, scanErr := scanAuthor(rows)
		if scanErr != nil {
			return scanErr
		}

		authors = append(authors, author)

		return nil
	})

	if err != nil {
		e.logError(ctx, logMsgSelectAuthorsFailed, err)
		observer.finishError(err, duration)

		return nil, errors.Join(catalog.ErrQueryingAuthorsFailed, err)
	}

	e.logOperation(
		ctx,
		logMsgAuthorsSelected,
		logAttrAuthorCount, len(authors),
		logAttrDurationMS, e.toMilliseconds(duration),
	)
	observer.finishSelected(metricAuthorsSelected, spanAttrAuthorCount, len(authors), duration)

	return authors, nil
}

func scanAuthor(rows adapters.DBRows) (catalog.Author, error) {
	var id, name string

	if err := rows.Scan(&id, &name); err != nil {
		return catalog.Author{}, errors.Join(catalog.ErrScanningDBRowFailed, err)
	}

	authorID, err := catalog.ParseID(id)
	if err != nil {
		return catalog.Author{}, err
	}

	return catalog.BuildAuthor(authorID, name), nil
}
