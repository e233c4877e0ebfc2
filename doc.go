// Package jsondb provides an embedded, file-backed document store.
//
// # Overview
//
// A [Store] holds a single collection of schemaless [Record] values in memory
// and mirrors it to one pretty-printed JSON file. Every mutation rewrites the
// whole file, so the file is always a complete snapshot of the collection:
//
//	{
//	  "<id>": {
//	    "_id": "<id>",
//	    "name": "a"
//	  }
//	}
//
// # Queries
//
// A [Filter] is a conjunction of strict equality tests on top-level fields.
// Scalars match when they have the same JSON kind and value; nested objects
// and arrays in a filter never match. An empty filter matches every record.
//
// # Errors
//
// Lookups that match nothing are not errors: they return nil records, zero
// counts or empty slices. Bad input is reported with [ErrInvalidRecord] or
// [ErrInvalidFilter]. A failed write after a mutation is reported with
// [ErrPersist]; the in-memory change is kept and [Store.Dirty] returns true
// until a later write succeeds.
//
// # Concurrency
//
// A Store is safe for use by multiple goroutines. Nothing coordinates
// separate processes opening the same file.
package jsondb
