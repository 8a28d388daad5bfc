// Package console implements the interactive command layer of the book catalog.
//
// A Handler holds named actions. ParseCommand reads one line from a Session, splits off the
// first word as the command name and hands the rest of the line to the action.
// RegisterCatalogCommands adds the catalog commands (AddAuthor, ShowAuthors, AddBook,
// ShowAuthorBooks, ShowBooks, Help) on top of a Catalog such as *catalog.Service.
package console
