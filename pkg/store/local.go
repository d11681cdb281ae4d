package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/rs/zerolog"
)

var _ Store[catalogs.Course] = (*Local[catalogs.Course])(nil)

// Local is a collection persisted as a JSON array under one key-value key.
//
// Every mutation is a read-modify-write of the whole array under a
// per-collection mutex. Storage faults never reach the caller: unreadable
// data falls back to the seed, and a failed write leaves the in-memory copy
// authoritative until a later write succeeds.
type Local[T Record] struct {
	cfg  Config[T]
	kv   kv.Store
	opts *options
	log  zerolog.Logger
	ids  idGenerator

	mu sync.Mutex
	// memory holds the collection after a failed write; nil otherwise.
	memory []T
	seed   []byte

	*Hooks[T]
}

// NewLocal creates a collection store over kvs and seeds it.
// A seeding failure is logged; the store stays usable and serves the seed.
func NewLocal[T Record](ctx context.Context, kvs kv.Store, cfg Config[T], opts ...Option) *Local[T] {
	o := applyOptions(opts)
	l := &Local[T]{
		cfg:   cfg,
		kv:    kvs,
		opts:  o,
		log:   o.logger.With().Str("collection", cfg.Key).Logger(),
		Hooks: &Hooks[T]{},
	}

	seed := cfg.Seed
	if seed == nil {
		seed = []T{}
	}
	b, err := json.Marshal(seed)
	if err != nil {
		l.log.Error().Err(err).Msg("seed fixture cannot be encoded")
		b = []byte("[]")
	}
	l.seed = b

	if err := l.EnsureSeeded(ctx); err != nil {
		l.log.Warn().Err(err).Msg("seeding failed, serving seed from memory")
	}
	return l
}

// Key returns the key-value key owning this collection.
func (l *Local[T]) Key() string {
	return l.cfg.Key
}

// EnsureSeeded writes the seed fixture when the key holds no value.
// It is idempotent and safe to call at any time.
func (l *Local[T]) EnsureSeeded(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok, err := l.kv.Get(ctx, l.cfg.Key)
	if err != nil {
		return errors.WrapStorage("read", l.cfg.Key, err)
	}
	if ok && raw != "" {
		return nil
	}
	if err := l.kv.Set(ctx, l.cfg.Key, string(l.seed)); err != nil {
		l.memory = l.seedCopy()
		return errors.WrapStorage("write", l.cfg.Key, err)
	}
	l.log.Debug().Msg("collection seeded")
	return nil
}

// GetAll returns the normalized records matching spec.
func (l *Local[T]) GetAll(ctx context.Context, spec catalogs.FilterSpec) ([]T, error) {
	l.mu.Lock()
	items := l.load(ctx)
	l.mu.Unlock()

	return l.cfg.filter(l.cfg.normalize(ctx, items), spec), nil
}

// Raw returns the stored records without normalization or filtering.
func (l *Local[T]) Raw(ctx context.Context) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// GetByID returns one normalized record.
func (l *Local[T]) GetByID(ctx context.Context, id string) (T, error) {
	l.mu.Lock()
	items := l.load(ctx)
	l.mu.Unlock()

	i := indexOf(items, id)
	if i < 0 {
		var zero T
		return zero, errors.NewNotFoundError(l.cfg.resource(), id)
	}
	return l.cfg.normalize(ctx, items[i:i+1])[0], nil
}

// Create appends a record. A caller-supplied id is kept when free; otherwise
// a timestamp id is assigned. createdAt and updatedAt are stamped.
func (l *Local[T]) Create(ctx context.Context, data T) (T, error) {
	var zero T

	l.mu.Lock()
	items := l.load(ctx)

	fields, err := toFields(data)
	if err != nil {
		l.mu.Unlock()
		return zero, errors.NewValidationError("", data, err.Error())
	}
	l.stripDerived(fields)

	id := data.GetID()
	if id == "" {
		now := l.opts.clock()
		id = l.ids.next(now.Time, func(candidate string) bool { return indexOf(items, candidate) >= 0 })
	} else if indexOf(items, id) >= 0 {
		l.mu.Unlock()
		return zero, errors.NewAlreadyExistsError(l.cfg.resource(), id)
	}

	stamp := catalogs.FormatTimestamp(l.opts.clock())
	fields[fieldID] = id
	fields[fieldCreatedAt] = stamp
	fields[fieldUpdatedAt] = stamp

	record, err := fromFields[T](fields)
	if err != nil {
		l.mu.Unlock()
		return zero, errors.NewValidationError("", data, err.Error())
	}
	items = append(items, record)
	l.persist(ctx, items)
	l.mu.Unlock()

	l.created(record)
	return l.cfg.normalize(ctx, []T{record})[0], nil
}

// Update shallow-merges patch over the record. id and createdAt are never
// changed by a patch and updatedAt is refreshed.
func (l *Local[T]) Update(ctx context.Context, id string, patch Patch) (T, error) {
	var zero T

	l.mu.Lock()
	items := l.load(ctx)
	i := indexOf(items, id)
	if i < 0 {
		l.mu.Unlock()
		return zero, errors.NewNotFoundError(l.cfg.resource(), id)
	}
	old := items[i]

	fields, err := toFields(old)
	if err != nil {
		l.mu.Unlock()
		return zero, errors.WrapParse("json", l.cfg.Key, err)
	}
	for k, v := range patch {
		if k == fieldID || k == fieldCreatedAt {
			continue
		}
		fields[k] = v
	}
	l.stripDerived(fields)
	fields[fieldUpdatedAt] = catalogs.FormatTimestamp(l.opts.clock())

	record, err := fromFields[T](fields)
	if err != nil {
		l.mu.Unlock()
		return zero, errors.NewValidationError("", patch, err.Error())
	}
	items[i] = record
	l.persist(ctx, items)
	l.mu.Unlock()

	l.updated(old, record)
	return l.cfg.normalize(ctx, []T{record})[0], nil
}

// Delete removes the record with id.
func (l *Local[T]) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	items := l.load(ctx)
	i := indexOf(items, id)
	if i < 0 {
		l.mu.Unlock()
		return errors.NewNotFoundError(l.cfg.resource(), id)
	}
	removed := items[i]
	items = append(items[:i:i], items[i+1:]...)
	l.persist(ctx, items)
	l.mu.Unlock()

	l.deleted(removed)
	return nil
}

// Replace overwrites the whole collection.
func (l *Local[T]) Replace(ctx context.Context, items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persist(ctx, cloneAll(items))
}

// Reseed overwrites the collection with the seed fixture.
func (l *Local[T]) Reseed(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persist(ctx, l.seedCopy())
}

// Clear removes the collection key. The next read seeds it again.
func (l *Local[T]) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.memory = nil
	return errors.WrapStorage("delete", l.cfg.Key, l.kv.Delete(ctx, l.cfg.Key))
}

// Count returns the number of stored records.
func (l *Local[T]) Count(ctx context.Context) int {
	return len(l.Raw(ctx))
}

// load returns a private copy of the collection. Callers hold l.mu.
func (l *Local[T]) load(ctx context.Context) []T {
	if l.memory != nil {
		return cloneAll(l.memory)
	}

	raw, ok, err := l.kv.Get(ctx, l.cfg.Key)
	if err != nil {
		l.log.Warn().Err(errors.WrapStorage("read", l.cfg.Key, err)).Msg("serving seed data")
		return l.seedCopy()
	}
	if !ok || raw == "" {
		seed := l.seedCopy()
		l.persist(ctx, seed)
		return cloneAll(seed)
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if json.Valid(trimmed) && !bytes.HasPrefix(trimmed, []byte("[")) {
		// valid JSON that is not an array holds no records
		return []T{}
	}
	items := []T{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		l.log.Warn().Err(errors.WrapStorage("read", l.cfg.Key, err)).Msg("stored data unreadable, serving seed data")
		return l.seedCopy()
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// persist writes items. A failed write is logged and items become the
// in-memory source of truth. Callers hold l.mu.
func (l *Local[T]) persist(ctx context.Context, items []T) {
	b, err := json.Marshal(items)
	if err == nil {
		err = l.kv.Set(ctx, l.cfg.Key, string(b))
	}
	if err != nil {
		l.log.Warn().Err(errors.WrapStorage("write", l.cfg.Key, err)).Int("records", len(items)).Msg("keeping collection in memory")
		l.memory = cloneAll(items)
		return
	}
	l.memory = nil
}

func (l *Local[T]) seedCopy() []T {
	items := []T{}
	_ = json.Unmarshal(l.seed, &items)
	return items
}

func (l *Local[T]) stripDerived(fields map[string]any) {
	for _, f := range l.cfg.Derived {
		delete(fields, f)
	}
}
