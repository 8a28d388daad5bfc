// Package catalog provides the core types of the book catalog: authors, books,
// the repository abstractions used to persist them, and the Service facade the
// command layer talks to.
//
// Storage implementations live in sub-packages:
//   - sqlengine: relational storage (PostgreSQL via pgx, database/sql or sqlx, and SQLite)
//   - memengine: in-memory storage, mainly for tests
//
// Common usage pattern:
//
//	engine, _ := sqlengine.NewEngineFromPGXPool(pool)
//	_ = engine.EnsureSchema(ctx)
//
//	service, _ := catalog.NewService(
//		sqlengine.NewAuthorRepository(engine),
//		sqlengine.NewBookRepository(engine),
//	)
//
//	author := catalog.BuildAuthor(catalog.NewID(), "Tolkien")
//	err := service.SaveAuthor(ctx, author)
//
// Identifiers are generated by the caller before anything is persisted.
package catalog
