// Package docstore defines the client contract for a remote document store:
// named collections of JSON documents addressed by id, with simple equality
// queries. An in-memory implementation is provided for tests and offline use.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document id does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// Document is a stored JSON document.
type Document struct {
	ID   string
	Body json.RawMessage
}

// Filter is an equality condition on a top-level document field.
type Filter struct {
	Field string
	Value string
}

// Client is a remote document store.
type Client interface {
	// Query returns the documents of collection matching every filter.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Add stores a new document and returns its id. An empty id is generated.
	Add(ctx context.Context, collection, id string, body json.RawMessage) (string, error)
	// Update merges fields over the stored document or returns ErrNotFound.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// Matches reports whether a decoded document satisfies every filter.
// Non-string values compare by their JSON text.
func Matches(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := doc[f.Field]
		if !ok {
			return false
		}
		if s, isString := v.(string); isString {
			if s != f.Value {
				return false
			}
			continue
		}
		b, err := json.Marshal(v)
		if err != nil || string(b) != f.Value {
			return false
		}
	}
	return true
}

var _ Client = (*Memory)(nil)

// Memory is an in-memory Client.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	order       map[string][]string
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]json.RawMessage),
		order:       make(map[string][]string),
	}
}

// Query returns matching documents in insertion order.
func (m *Memory) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := []Document{}
	for _, id := range m.order[collection] {
		body := m.collections[collection][id]
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		if Matches(decoded, filters) {
			docs = append(docs, Document{ID: id, Body: append(json.RawMessage(nil), body...)})
		}
	}
	return docs, nil
}

// Get returns one document.
func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Body: append(json.RawMessage(nil), body...)}, nil
}

// Add stores a new document, replacing one with the same id.
func (m *Memory) Add(ctx context.Context, collection, id string, body json.RawMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !json.Valid(body) {
		return "", fmt.Errorf("add %s: invalid JSON body", collection)
	}
	if id == "" {
		id = NewID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]json.RawMessage)
	}
	if _, exists := m.collections[collection][id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	m.collections[collection][id] = append(json.RawMessage(nil), body...)
	return id, nil
}

// Update merges fields into the stored document.
func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.collections[collection][id] = merged
	return nil
}

// Delete removes a document.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	ids := m.order[collection]
	for i, v := range ids {
		if v == id {
			m.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Collections returns the names of non-empty collections, sorted.
func (m *Memory) Collections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name, docs := range m.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
