package store

import "sync"

// Hook function types for collection changes
type (
	// CreatedHook is called after a record is created
	CreatedHook[T Record] func(record T)

	// UpdatedHook is called after a record is updated
	UpdatedHook[T Record] func(old, new T)

	// DeletedHook is called after a record is deleted
	DeletedHook[T Record] func(record T)
)

// Hooks manages change callbacks for one collection.
// Callbacks run after the collection lock is released.
type Hooks[T Record] struct {
	mu        sync.RWMutex
	onCreated []CreatedHook[T]
	onUpdated []UpdatedHook[T]
	onDeleted []DeletedHook[T]
}

// OnCreated registers a callback for created records.
func (h *Hooks[T]) OnCreated(fn CreatedHook[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCreated = append(h.onCreated, fn)
}

// OnUpdated registers a callback for updated records.
func (h *Hooks[T]) OnUpdated(fn UpdatedHook[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdated = append(h.onUpdated, fn)
}

// OnDeleted registers a callback for deleted records.
func (h *Hooks[T]) OnDeleted(fn DeletedHook[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDeleted = append(h.onDeleted, fn)
}

func (h *Hooks[T]) created(r T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onCreated {
		fn(r)
	}
}

func (h *Hooks[T]) updated(old, new T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onUpdated {
		fn(old, new)
	}
}

func (h *Hooks[T]) deleted(r T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onDeleted {
		fn(r)
	}
}
