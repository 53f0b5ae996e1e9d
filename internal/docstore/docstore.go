// Package docstore defines the document store the repositories are written
// against. Adapters live in the mongo and postgres subpackages; Memory is an
// in-process implementation.
package docstore

import (
	"context"
	"errors"
)

// IDField is the filter and document key holding the store-assigned
// identifier. Adapters always expose it as a string.
const IDField = "_id"

// Document is a schema-free record.
type Document map[string]any

// Filter matches documents whose top-level fields equal every given value.
type Filter map[string]any

// ErrNoDocuments is returned by FindOne when nothing matches.
var ErrNoDocuments = errors.New("docstore: no documents")

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("docstore: duplicate key")

// Collection is a named set of documents.
type Collection interface {
	FindAll(ctx context.Context, filter Filter) ([]Document, error)
	FindOne(ctx context.Context, filter Filter) (Document, error)
	// InsertOne stores doc and returns its generated identifier. A caller
	// supplied IDField is ignored.
	InsertOne(ctx context.Context, doc Document) (string, error)
	// UpdateOne merges partial into the first document matching filter and
	// reports how many documents matched.
	UpdateOne(ctx context.Context, filter Filter, partial Document) (int64, error)
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
}

// Database hands out collections by name.
type Database interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Collection names.
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// IDFilter returns a filter matching the document with the given identifier.
func IDFilter(id string) Filter {
	return Filter{IDField: id}
}
