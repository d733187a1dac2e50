package database

import "errors"

var (
	// ErrDatabaseNotFound is returned when the database file does not exist
	// and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrRunNotFound is returned when a run ID does not exist.
	ErrRunNotFound = errors.New("run not found")
)
