package catalog

import "errors"

var (
	// ErrConstraintViolation is returned when the storage rejects a write because of a
	// uniqueness or NOT NULL constraint, e.g. a second author with the same name.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrNilDatabaseConnection is returned by the engine factories when no database handle was supplied.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name was configured.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrNilRepository is returned by NewService when a repository is missing.
	ErrNilRepository = errors.New("repository must not be nil")

	// ErrInvalidID is returned when a stored identifier is not a valid UUID.
	ErrInvalidID = errors.New("identifier is not a valid uuid")

	ErrBuildingQueryFailed   = errors.New("building query failed")
	ErrEnsuringSchemaFailed  = errors.New("ensuring schema failed")
	ErrSavingAuthorFailed    = errors.New("saving author failed")
	ErrQueryingAuthorsFailed = errors.New("querying authors failed")
	ErrSavingBookFailed      = errors.New("saving book failed")
	ErrQueryingBooksFailed   = errors.New("querying books failed")
	ErrScanningDBRowFailed   = errors.New("scanning db row failed")
	ErrBeginningTxFailed     = errors.New("beginning transaction failed")
	ErrCommittingTxFailed    = errors.New("committing transaction failed")
	ErrPreparingStmtFailed   = errors.New("preparing statement failed")
)
