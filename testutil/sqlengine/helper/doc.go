// Package helper provides fixtures and test doubles for catalog engine tests.
package helper
