// Package memengine provides an in-memory implementation of the catalog repositories.
//
// It mirrors the observable behavior of the SQL engine (insertion order, unique author
// names, unique ids) without any database, which makes it the substitute of choice in tests.
package memengine
