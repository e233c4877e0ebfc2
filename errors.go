package jsondb

import "errors"

var (
	// ErrCorrupt is returned by Connect when the file exists but does not
	// hold a JSON object of records. The file is left untouched.
	ErrCorrupt = errors.New("jsondb: corrupt database file")
	// ErrPersist is returned when the collection was changed in memory but
	// could not be written to disk.
	ErrPersist = errors.New("jsondb: failed to persist")
	// ErrInvalidRecord is returned when a record cannot be represented as a
	// JSON object.
	ErrInvalidRecord = errors.New("jsondb: invalid record")
	// ErrInvalidFilter is returned when a filter cannot be represented as a
	// JSON object.
	ErrInvalidFilter = errors.New("jsondb: invalid filter")
	// ErrReadOnly is returned by mutations on a store opened WithReadOnly.
	ErrReadOnly = errors.New("jsondb: store is read-only")
)
