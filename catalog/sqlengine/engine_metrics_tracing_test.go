package sqlengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
	. "github.com/AntonStoeckl/bookcatalog/testutil/sqlengine/helper"            //nolint:revive
	. "github.com/AntonStoeckl/bookcatalog/testutil/sqlengine/helper/sqlwrapper" //nolint:revive
)

type testContextKey string

func Test_Observability_WithMetrics_RecordsInsertAndSelectMetrics(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsCollector := NewMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	author := FixtureAuthor(t, "Tolkien")
	metricsCollector.Reset()

	// act
	insertErr := engine.InsertAuthor(ctxWithTimeout, author)
	_, selectErr := engine.SelectAuthors(ctxWithTimeout)

	// assert
	assert.NoError(t, insertErr)
	assert.NoError(t, selectErr)
	assert.True(t, metricsCollector.HasDurationRecordForMetric("catalog_operation_duration_seconds").
		WithOperation("insert_author").
		WithStatus("success").
		Assert(), "should record the insert duration with correct labels")
	assert.True(t, metricsCollector.HasCounterRecordForMetric("catalog_authors_inserted_total").
		WithOperation("insert_author").
		Assert(), "should count the inserted author")
	assert.True(t, metricsCollector.HasDurationRecordForMetric("catalog_operation_duration_seconds").
		WithOperation("select_authors").
		WithStatus("success").
		Assert(), "should record the select duration with correct labels")
	assert.True(t, metricsCollector.HasValueRecordForMetric("catalog_authors_selected").
		WithOperation("select_authors").
		WithValue(1).
		Assert(), "should record the number of selected authors")
	assert.Equal(t, 0, metricsCollector.CountRecordsForMetric("catalog_database_errors_total"))
}

func Test_Observability_WithMetrics_RecordsBookMetrics(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsCollector := NewMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	author := GivenAuthorWasSaved(t, ctxWithTimeout, engine, "Zelazny")
	metricsCollector.Reset()

	// act
	firstErr := engine.InsertBook(ctxWithTimeout, FixtureBook(t, author.ID, "Nine Princes in Amber", 1970))
	secondErr := engine.InsertBook(ctxWithTimeout, FixtureBook(t, author.ID, "Lord of Light", 1967))
	_, byAuthorErr := engine.SelectBooksByAuthorID(ctxWithTimeout, author.ID)
	_, allErr := engine.SelectBooks(ctxWithTimeout)

	// assert
	assert.NoError(t, firstErr)
	assert.NoError(t, secondErr)
	assert.NoError(t, byAuthorErr)
	assert.NoError(t, allErr)
	assert.True(t, metricsCollector.HasCounterRecordForMetric("catalog_books_inserted_total").
		WithOperation("insert_book").
		WithStatus("success").
		Assert(), "should count the inserted books")
	assert.True(t, metricsCollector.HasValueRecordForMetric("catalog_books_selected").
		WithOperation("select_books_by_author").
		WithValue(2).
		Assert(), "should record the number of books of the author")
	assert.True(t, metricsCollector.HasValueRecordForMetric("catalog_books_selected").
		WithOperation("select_books").
		WithValue(2).
		Assert(), "should record the number of all books")
	assert.Equal(t, 2, metricsCollector.CountRecordsForMetric("catalog_books_inserted_total"))
}

func Test_Observability_WithMetrics_RecordsConstraintViolation(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsCollector := NewMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	GivenAuthorWasSaved(t, ctxWithTimeout, engine, "Tolkien")
	metricsCollector.Reset()

	// act
	err := engine.InsertAuthor(ctxWithTimeout, FixtureAuthor(t, "Tolkien"))

	// assert
	assert.ErrorIs(t, err, catalog.ErrConstraintViolation)
	assert.True(t, metricsCollector.HasCounterRecordForMetric("catalog_constraint_violations_total").
		WithOperation("insert_author").
		WithStatus("error").
		WithErrorType("constraint_violation").
		Assert(), "should count the constraint violation with correct labels")
	assert.True(t, metricsCollector.HasDurationRecordForMetric("catalog_operation_duration_seconds").
		WithOperation("insert_author").
		WithStatus("error").
		Assert(), "should record the duration of the rejected insert")
	assert.Equal(t, 0, metricsCollector.CountRecordsForMetric("catalog_database_errors_total"),
		"a constraint violation is not a database error")
	assert.Equal(t, 0, metricsCollector.CountRecordsForMetric("catalog_authors_inserted_total"))
}

func Test_Observability_WithMetrics_RecordsDatabaseErrorWithErrorType(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsCollector := NewMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	InsertRawAuthor(t, wrapper, "not-a-uuid", "Tolkien")
	metricsCollector.Reset()

	// act
	_, err := engine.SelectAuthors(ctxWithTimeout)

	// assert
	assert.ErrorIs(t, err, catalog.ErrInvalidID)
	assert.True(t, metricsCollector.HasCounterRecordForMetric("catalog_database_errors_total").
		WithOperation("select_authors").
		WithStatus("error").
		WithErrorType("invalid_id").
		Assert(), "should count the failed select with its error type")
	assert.True(t, metricsCollector.HasDurationRecordForMetric("catalog_operation_duration_seconds").
		WithOperation("select_authors").
		WithStatus("error").
		Assert(), "should record the duration of the failed select")
	assert.Equal(t, 0, metricsCollector.CountRecordsForMetric("catalog_authors_selected"))
}

func Test_Observability_WithMetrics_RecordsCanceledOperations(t *testing.T) {
	// setup
	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	metricsCollector := NewMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	metricsCollector.Reset()

	// act
	_, err := engine.SelectBooks(canceledCtx)

	// assert
	assert.ErrorIs(t, err, catalog.ErrQueryingBooksFailed)
	assert.True(t, metricsCollector.HasCounterRecordForMetric("catalog_database_errors_total").
		WithOperation("select_books").
		WithStatus("error").
		Assert(), "should count the canceled select as an error")
}

func Test_Observability_WithMetrics_FallbackToNonContextual(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsCollector := NewMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	metricsCollector.Reset()

	// act
	_, err := engine.SelectBooks(ctxWithTimeout)

	// assert
	assert.NoError(t, err)
	assert.False(t, metricsCollector.SupportsContextual(), "basic spy should not support contextual interface")
	assert.True(t, metricsCollector.HasDurationRecordForMetric("catalog_operation_duration_seconds").
		WithOperation("select_books").
		WithStatus("success").
		Assert(), "should record the duration via the fallback path")
}

func Test_Observability_WithContextualMetrics_UsesContextualPath(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsCollector := NewContextualMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	metricsCollector.Reset()

	// act
	_, err := engine.SelectBooks(ctxWithTimeout)

	// assert
	assert.NoError(t, err)
	assert.True(t, metricsCollector.SupportsContextual(), "contextual spy should support contextual interface")
	assert.Equal(t, metricsCollector.GetRecordCount(), metricsCollector.GetContextualCallCount(),
		"every metric should go through the context-aware methods")
	assert.True(t, metricsCollector.HasValueRecordForMetric("catalog_books_selected").
		WithOperation("select_books").
		WithValue(0).
		Assert(), "should record the number of books via the contextual path")
}

func Test_Observability_WithTracing_RecordsSpansPerOperation(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracingCollector := NewTracingCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithTracing(tracingCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	author := FixtureAuthor(t, "Zelazny")
	book := FixtureBook(t, author.ID, "Lord of Light", 1967)
	tracingCollector.Reset()

	// act
	authorErr := engine.InsertAuthor(ctxWithTimeout, author)
	bookErr := engine.InsertBook(ctxWithTimeout, book)
	_, authorsErr := engine.SelectAuthors(ctxWithTimeout)
	_, booksErr := engine.SelectBooksByAuthorID(ctxWithTimeout, author.ID)
	_, allBooksErr := engine.SelectBooks(ctxWithTimeout)

	// assert
	assert.NoError(t, authorErr)
	assert.NoError(t, bookErr)
	assert.NoError(t, authorsErr)
	assert.NoError(t, booksErr)
	assert.NoError(t, allBooksErr)
	assert.Equal(t, 5, tracingCollector.GetSpanRecordCount())
	assert.Equal(t, 0, tracingCollector.CountUnfinishedSpans(), "every span should be finished")
	assert.True(t, tracingCollector.HasSpanRecordForName("catalog.insert_author").
		WithStatus("success").
		WithStartAttribute("operation", "insert_author").
		WithStartAttribute("author_id", author.ID.String()).
		WithSpanAttribute("duration_ms").
		Assert(), "should record the insert author span")
	assert.True(t, tracingCollector.HasSpanRecordForName("catalog.insert_book").
		WithStatus("success").
		WithStartAttribute("book_id", book.ID.String()).
		WithStartAttribute("author_id", author.ID.String()).
		Assert(), "should record the insert book span")
	assert.True(t, tracingCollector.HasSpanRecordForName("catalog.select_authors").
		WithStatus("success").
		WithEndAttribute("author_count", "1").
		Assert(), "should record the select authors span with the row count")
	assert.True(t, tracingCollector.HasSpanRecordForName("catalog.select_books_by_author").
		WithStatus("success").
		WithStartAttribute("author_id", author.ID.String()).
		WithEndAttribute("book_count", "1").
		Assert(), "should record the select books by author span with the row count")
	assert.True(t, tracingCollector.HasSpanRecordForName("catalog.select_books").
		WithStatus("success").
		WithEndAttribute("book_count", "1").
		Assert(), "should record the select books span with the row count")
}

func Test_Observability_WithTracing_RecordsErrorSpans(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracingCollector := NewTracingCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithTracing(tracingCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	GivenAuthorWasSaved(t, ctxWithTimeout, engine, "Tolkien")
	tracingCollector.Reset()

	// act
	err := engine.InsertAuthor(ctxWithTimeout, FixtureAuthor(t, "Tolkien"))

	// assert
	assert.ErrorIs(t, err, catalog.ErrConstraintViolation)
	assert.True(t, tracingCollector.HasSpanRecordForName("catalog.insert_author").
		WithStatus("error").
		WithEndAttribute("error_type", "constraint_violation").
		Assert(), "should record the rejected insert as an error span")
}

func Test_Observability_WithTracing_RecordsEnsureSchemaSpan(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracingCollector := NewTracingCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithTracing(tracingCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	tracingCollector.Reset()

	// act
	err := engine.EnsureSchema(ctxWithTimeout)

	// assert
	assert.NoError(t, err)
	assert.True(t, tracingCollector.HasSpanRecordForName("catalog.ensure_schema").
		WithStatus("success").
		WithStartAttribute("operation", "ensure_schema").
		Assert(), "should record the ensure schema span")
}

func Test_Observability_WithTracing_ShouldWork_WhenCollectorHandsOutNoSpans(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracingCollector := NewTracingCollectorSpy(false)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithTracing(tracingCollector))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	author := FixtureAuthor(t, "Tolkien")

	// act
	insertErr := engine.InsertAuthor(ctxWithTimeout, author)
	authors, selectErr := engine.SelectAuthors(ctxWithTimeout)

	// assert
	assert.NoError(t, insertErr)
	assert.NoError(t, selectErr)
	assert.Equal(t, catalog.Authors{author}, authors)
	assert.Equal(t, 0, tracingCollector.GetSpanRecordCount())
}

func Test_Observability_WithContextualLogger_LogsWithOperationContext(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctxWithValue := context.WithValue(ctxWithTimeout, testContextKey("request"), "r-1")

	contextualLogger := NewContextualLoggerSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithContextualLogger(contextualLogger))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	CleanUp(t, wrapper)
	author := FixtureAuthor(t, "Tolkien")
	contextualLogger.Reset()

	// act
	insertErr := engine.InsertAuthor(ctxWithValue, author)
	_, selectErr := engine.SelectAuthors(ctxWithValue)

	// assert
	assert.NoError(t, insertErr)
	assert.NoError(t, selectErr)
	assert.Equal(t, 4, contextualLogger.GetTotalRecordCount(), "one debug and one info record per operation")
	assert.True(t, contextualLogger.HasDebugLog("executed sql for: insert author"), "should log the insert statement")
	assert.True(t, contextualLogger.HasInfoLog("catalog operation: author inserted"), "should log the inserted author")
	assert.True(t, contextualLogger.HasDebugLog("executed sql for: select authors"), "should log the select statement")
	assert.True(t, contextualLogger.HasInfoLog("catalog operation: authors selected"), "should log the selected authors")
	assert.True(t, contextualLogger.AllRecordsCarryContextValue(testContextKey("request"), "r-1"),
		"every record should carry the caller's context")
}

func Test_Observability_WithContextualLogger_LogsErrors(t *testing.T) {
	// setup
	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	contextualLogger := NewContextualLoggerSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithContextualLogger(contextualLogger))
	defer wrapper.Close()
	engine := wrapper.GetEngine()

	// arrange
	contextualLogger.Reset()

	// act
	_, err := engine.SelectBooks(canceledCtx)

	// assert
	assert.Error(t, err)
	assert.True(t, contextualLogger.HasErrorLog("failed to select books"), "should log the failed select")
}
