package sqlengine_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
	. "github.com/AntonStoeckl/bookcatalog/testutil/sqlengine/helper"            //nolint:revive
	. "github.com/AntonStoeckl/bookcatalog/testutil/sqlengine/helper/sqlwrapper" //nolint:revive
)

func Test_Observability_InsertAuthor_ShouldLogQueryAndOperation(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logHandlerSpy := NewLogHandlerSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(slog.New(logHandlerSpy)))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	author := FixtureAuthor(t, "Tolkien")
	logHandlerSpy.Reset()

	// act
	err := engine.InsertAuthor(ctxWithTimeout, author)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, logHandlerSpy.GetRecordCount())
	assert.Equal(t, 1, logHandlerSpy.CountRecordsWithLevel(slog.LevelDebug))
	assert.Equal(t, 1, logHandlerSpy.CountRecordsWithLevel(slog.LevelInfo))
	assert.True(t,
		logHandlerSpy.HasDebugLogWithMessage("executed sql for: insert author").
			WithDurationMS().
			WithAttr("query").
			Assert(),
		"debug log with the executed statement should be present",
	)
	assert.True(t,
		logHandlerSpy.HasInfoLogWithMessage("catalog operation: author inserted").
			WithStringAttr("author_id", author.ID.String()).
			WithDurationMS().
			Assert(),
		"info log for the inserted author should be present",
	)
}

func Test_Observability_SelectAuthors_ShouldLogAuthorCount(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logHandlerSpy := NewLogHandlerSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(slog.New(logHandlerSpy)))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	GivenAuthorWasSaved(t, ctxWithTimeout, engine, "Tolkien")
	GivenAuthorWasSaved(t, ctxWithTimeout, engine, "Le Guin")
	logHandlerSpy.Reset()

	// act
	_, err := engine.SelectAuthors(ctxWithTimeout)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, logHandlerSpy.GetRecordCount())
	assert.True(t,
		logHandlerSpy.HasDebugLogWithMessage("executed sql for: select authors").WithDurationMS().Assert(),
		"debug log with the executed statement should be present",
	)
	assert.True(t,
		logHandlerSpy.HasInfoLogWithMessage("catalog operation: authors selected").
			WithIntAttr("author_count", 2).
			WithDurationMS().
			Assert(),
		"info log with the author count should be present",
	)
}

func Test_Observability_SelectBooksByAuthorID_ShouldLogBookCount(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logHandlerSpy := NewLogHandlerSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(slog.New(logHandlerSpy)))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	author := GivenAuthorWasSaved(t, ctxWithTimeout, engine, "Tolkien")
	GivenBookWasSaved(t, ctxWithTimeout, engine, author.ID, "The Hobbit", 1937)
	logHandlerSpy.Reset()

	// act
	_, err := engine.SelectBooksByAuthorID(ctxWithTimeout, author.ID)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, logHandlerSpy.GetRecordCount())
	assert.True(t,
		logHandlerSpy.HasDebugLogWithMessage("executed sql for: select books by author").WithDurationMS().Assert(),
		"debug log with the executed statement should be present",
	)
	assert.True(t,
		logHandlerSpy.HasInfoLogWithMessage("catalog operation: books selected").
			WithIntAttr("book_count", 1).
			WithDurationMS().
			Assert(),
		"info log with the book count should be present",
	)
}

func Test_Observability_InsertBook_ShouldLogBookID(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logHandlerSpy := NewLogHandlerSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(slog.New(logHandlerSpy)))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	book := FixtureBook(t, GivenUniqueID(t), "The Hobbit", 1937)
	logHandlerSpy.Reset()

	// act
	err := engine.InsertBook(ctxWithTimeout, book)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, logHandlerSpy.GetRecordCount())
	assert.True(t,
		logHandlerSpy.HasInfoLogWithMessage("catalog operation: book inserted").
			WithStringAttr("book_id", book.ID.String()).
			WithStringAttr("author_id", book.AuthorID.String()).
			Assert(),
		"info log for the inserted book should be present",
	)
}

func Test_Observability_ConstraintViolation_ShouldLogAtInfoLevel(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logHandlerSpy := NewLogHandlerSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(slog.New(logHandlerSpy)))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	GivenAuthorWasSaved(t, ctxWithTimeout, engine, "Tolkien")
	logHandlerSpy.Reset()

	// act
	err := engine.InsertAuthor(ctxWithTimeout, FixtureAuthor(t, "Tolkien"))

	// assert
	assert.ErrorIs(t, err, catalog.ErrConstraintViolation)
	assert.Equal(t, 1, logHandlerSpy.CountRecordsWithLevel(slog.LevelDebug))
	assert.Equal(t, 1, logHandlerSpy.CountRecordsWithLevel(slog.LevelInfo))
	assert.Equal(t, 0, logHandlerSpy.CountRecordsWithLevel(slog.LevelError))
	assert.True(t,
		logHandlerSpy.HasInfoLogWithMessage("catalog operation: constraint violation detected").
			WithAttr("error").
			WithAttr("author_id").
			Assert(),
		"info log for the constraint violation should be present",
	)
}

func Test_Observability_EnsureSchema_ShouldLogEveryStatement(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logHandlerSpy := NewLogHandlerSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(slog.New(logHandlerSpy)))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	logHandlerSpy.Reset()
	expectedStatements := 2
	if IsPostgres(wrapper) {
		expectedStatements = 4 // plus the sequence_number upgrades
	}

	// act
	err := engine.EnsureSchema(ctxWithTimeout)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, expectedStatements, logHandlerSpy.CountRecordsWithLevel(slog.LevelDebug))
	assert.Equal(t, 1, logHandlerSpy.CountRecordsWithLevel(slog.LevelInfo))
	assert.True(t,
		logHandlerSpy.HasInfoLogWithMessage("catalog operation: schema ensured").WithDurationMS().Assert(),
		"info log for the ensured schema should be present",
	)
}

func Test_Observability_FailedOperation_ShouldLogError(t *testing.T) {
	// setup
	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	logHandlerSpy := NewLogHandlerSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(slog.New(logHandlerSpy)))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	logHandlerSpy.Reset()

	// act
	_, err := engine.SelectBooks(canceledCtx)

	// assert
	assert.ErrorIs(t, err, catalog.ErrQueryingBooksFailed)
	assert.True(t,
		logHandlerSpy.HasErrorLogWithMessage("failed to select books").WithAttr("error").Assert(),
		"error log for the failed select should be present",
	)
}
