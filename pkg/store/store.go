// Package store implements keyed collections of records: Local persists a
// collection as one JSON array under a single key-value key, and Remote serves
// the same contract from a document store, falling back to a Local store when
// the remote cannot answer.
package store

import (
	"context"

	"github.com/agentstation/coursemap/pkg/catalogs"
)

// Record is anything stored in a collection.
type Record interface {
	GetID() string
}

// Patch is a set of top-level JSON fields shallow-merged over a record.
type Patch map[string]any

// Fields that a patch can never change.
const (
	fieldID        = "id"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// Store is the CRUD contract shared by local and remote collections.
type Store[T Record] interface {
	// GetAll returns the normalized records matching spec.
	GetAll(ctx context.Context, spec catalogs.FilterSpec) ([]T, error)
	// GetByID returns one normalized record or a NotFound error.
	GetByID(ctx context.Context, id string) (T, error)
	// Create stores a new record. An empty id is assigned; a taken id is rejected.
	Create(ctx context.Context, data T) (T, error)
	// Update shallow-merges patch over the record with id.
	Update(ctx context.Context, id string, patch Patch) (T, error)
	// Delete removes the record with id.
	Delete(ctx context.Context, id string) error
}

// Config describes one collection.
type Config[T Record] struct {
	// Key is the key-value key holding the collection.
	Key string
	// Resource names records in errors and logs, e.g. "course".
	Resource string
	// Collection is the remote collection name.
	Collection string
	// Seed is written on first use and served when stored data is unreadable.
	Seed []T
	// Normalize derives display fields on read. It must not modify its input.
	Normalize func(ctx context.Context, items []T) []T
	// Filter applies a FilterSpec. Nil returns every record.
	Filter func(items []T, spec catalogs.FilterSpec) []T
	// Derived lists JSON fields dropped before a record is persisted.
	Derived []string
	// RemoteFilters lists FilterSpec fields pushed to the remote store as
	// equality conditions.
	RemoteFilters []string
}

func (c Config[T]) normalize(ctx context.Context, items []T) []T {
	if c.Normalize == nil {
		return items
	}
	return c.Normalize(ctx, items)
}

func (c Config[T]) filter(items []T, spec catalogs.FilterSpec) []T {
	if c.Filter == nil {
		return items
	}
	return c.Filter(items, spec)
}

func (c Config[T]) resource() string {
	if c.Resource != "" {
		return c.Resource
	}
	return "record"
}
