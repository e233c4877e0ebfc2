package jsondb

import (
	"github.com/google/uuid"
	"github.com/maruel/ksid"
)

// IDGenerator returns identifiers that are unique for the lifetime of a
// collection.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string {
	return f()
}

var (
	// KSID generates time-sortable identifiers. It is the default.
	KSID IDGenerator = IDGeneratorFunc(func() string { return ksid.NewID().String() })
	// UUID generates random version 4 UUIDs.
	UUID IDGenerator = IDGeneratorFunc(func() string { return uuid.NewString() })
)

// IDGeneratorByName returns the built-in generator called name ("ksid" or
// "uuid").
func IDGeneratorByName(name string) (IDGenerator, bool) {
	switch name {
	case "", "ksid":
		return KSID, true
	case "uuid":
		return UUID, true
	default:
		return nil, false
	}
}
