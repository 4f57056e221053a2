// Package docstore provides a generic keyed-document capability:
// named collections of field sets addressable by a unique key, with
// per-key upsert, per-key get, whole-collection listing, and per-key
// delete. Any document database with those four operations can back
// it; the package ships a PostgreSQL implementation for the server,
// an HTTP client implementation for remote access, and an in-memory
// implementation for tests and offline use.
//
// Listing a collection returns every document in it. There is no
// query-by-field operation; callers that need "documents owned by X"
// must list and filter on their side.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetKeyed when no document exists at the
// requested key.
var ErrNotFound = errors.New("document not found")

// Fields is the payload of a single document.
type Fields map[string]any

// Keyed pairs a document with its key, as returned by ListAll.
type Keyed struct {
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
}

// Store is the keyed-document contract.
type Store interface {
	// PutKeyed upserts the document at key, replacing any existing
	// fields entirely.
	PutKeyed(ctx context.Context, collection, key string, fields Fields) error
	// GetKeyed returns the document at key, or ErrNotFound.
	GetKeyed(ctx context.Context, collection, key string) (Fields, error)
	// ListAll returns every document in the collection.
	ListAll(ctx context.Context, collection string) ([]Keyed, error)
	// DeleteKeyed removes the document at key. Deleting an absent key
	// is not an error.
	DeleteKeyed(ctx context.Context, collection, key string) error
}
