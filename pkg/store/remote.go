package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentstation/coursemap/internal/cache"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/docstore"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/rs/zerolog"
)

// RemoteFilterTeacherID names the teacher reference as a server-side filter.
// Derived fields such as a course's level never run server-side.
const RemoteFilterTeacherID = "teacherId"

var _ Store[catalogs.Course] = (*Remote[catalogs.Course])(nil)

// Remote serves a collection from a document store. Equality filters named in
// Config.RemoteFilters run server-side; everything else runs locally after the
// fetch. Any remote failure other than a missing id is logged and the call is
// answered by the fallback store instead.
type Remote[T Record] struct {
	cfg      Config[T]
	client   docstore.Client
	fallback Store[T]
	opts     *options
	log      zerolog.Logger
	listings *cache.Cache[[]T]

	*Hooks[T]
}

// NewRemote wraps client with fallback.
func NewRemote[T Record](client docstore.Client, fallback Store[T], cfg Config[T], opts ...Option) *Remote[T] {
	o := applyOptions(opts)
	return &Remote[T]{
		cfg:      cfg,
		client:   client,
		fallback: fallback,
		opts:     o,
		log:      o.logger.With().Str("collection", cfg.Collection).Logger(),
		listings: cache.New[[]T](o.ttl, constants.CacheCleanupInterval),
		Hooks:    &Hooks[T]{},
	}
}

// GetAll queries the remote collection.
func (r *Remote[T]) GetAll(ctx context.Context, spec catalogs.FilterSpec) ([]T, error) {
	key := cacheKey(spec)
	if items, ok := r.listings.Get(key); ok {
		return cloneAll(items), nil
	}

	var docs []docstore.Document
	err := r.call(ctx, "query", func(ctx context.Context) error {
		var err error
		docs, err = r.client.Query(ctx, r.cfg.Collection, r.remoteFilters(spec)...)
		return err
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("remote query failed, using local collection")
		return r.fallback.GetAll(ctx, spec)
	}

	items, err := decodeDocuments[T](docs)
	if err != nil {
		r.log.Warn().Err(err).Msg("remote documents unreadable, using local collection")
		return r.fallback.GetAll(ctx, spec)
	}
	out := r.cfg.filter(r.cfg.normalize(ctx, items), spec)
	r.listings.Set(key, cloneAll(out))
	return out, nil
}

// GetByID fetches one document.
func (r *Remote[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	var doc docstore.Document
	err := r.call(ctx, "get", func(ctx context.Context) error {
		var err error
		doc, err = r.client.Get(ctx, r.cfg.Collection, id)
		return err
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return zero, errors.NewNotFoundError(r.cfg.resource(), id)
	}
	if err != nil {
		r.log.Warn().Err(err).Str("id", id).Msg("remote get failed, using local collection")
		return r.fallback.GetByID(ctx, id)
	}
	items, err := decodeDocuments[T]([]docstore.Document{doc})
	if err != nil {
		r.log.Warn().Err(err).Str("id", id).Msg("remote document unreadable, using local collection")
		return r.fallback.GetByID(ctx, id)
	}
	return r.cfg.normalize(ctx, items)[0], nil
}

// Create adds a document. The store assigns an id when data has none.
func (r *Remote[T]) Create(ctx context.Context, data T) (T, error) {
	var zero T
	fields, err := toFields(data)
	if err != nil {
		return zero, errors.NewValidationError("", data, err.Error())
	}
	for _, f := range r.cfg.Derived {
		delete(fields, f)
	}
	stamp := catalogs.FormatTimestamp(r.opts.clock())
	fields[fieldCreatedAt] = stamp
	fields[fieldUpdatedAt] = stamp
	delete(fields, fieldID)

	body, err := json.Marshal(fields)
	if err != nil {
		return zero, errors.NewValidationError("", data, err.Error())
	}

	var id string
	err = r.call(ctx, "add", func(ctx context.Context) error {
		var err error
		id, err = r.client.Add(ctx, r.cfg.Collection, data.GetID(), body)
		return err
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("remote add failed, using local collection")
		return r.fallback.Create(ctx, data)
	}
	r.listings.Clear()

	fields[fieldID] = id
	record, err := fromFields[T](fields)
	if err != nil {
		return zero, errors.WrapParse("json", r.cfg.Collection, err)
	}
	r.created(record)
	return r.cfg.normalize(ctx, []T{record})[0], nil
}

// Update merges patch into the document and returns the stored result.
func (r *Remote[T]) Update(ctx context.Context, id string, patch Patch) (T, error) {
	var zero T
	fields := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		if k == fieldID || k == fieldCreatedAt {
			continue
		}
		fields[k] = v
	}
	for _, f := range r.cfg.Derived {
		delete(fields, f)
	}
	fields[fieldUpdatedAt] = catalogs.FormatTimestamp(r.opts.clock())

	var before docstore.Document
	err := r.call(ctx, "get", func(ctx context.Context) error {
		var err error
		before, err = r.client.Get(ctx, r.cfg.Collection, id)
		return err
	})
	if err == nil {
		if _, verr := mergeDocument[T](before, fields); verr != nil {
			return zero, errors.NewValidationError("", patch, verr.Error())
		}
		err = r.call(ctx, "update", func(ctx context.Context) error {
			return r.client.Update(ctx, r.cfg.Collection, id, fields)
		})
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return zero, errors.NewNotFoundError(r.cfg.resource(), id)
	}
	if err != nil {
		r.log.Warn().Err(err).Str("id", id).Msg("remote update failed, using local collection")
		return r.fallback.Update(ctx, id, patch)
	}
	r.listings.Clear()

	updated, err := r.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if old, derr := decodeDocuments[T]([]docstore.Document{before}); derr == nil {
		r.updated(old[0], updated)
	}
	return updated, nil
}

// Delete removes the document.
func (r *Remote[T]) Delete(ctx context.Context, id string) error {
	var before docstore.Document
	err := r.call(ctx, "delete", func(ctx context.Context) error {
		var err error
		if before, err = r.client.Get(ctx, r.cfg.Collection, id); err != nil {
			return err
		}
		return r.client.Delete(ctx, r.cfg.Collection, id)
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return errors.NewNotFoundError(r.cfg.resource(), id)
	}
	if err != nil {
		r.log.Warn().Err(err).Str("id", id).Msg("remote delete failed, using local collection")
		return r.fallback.Delete(ctx, id)
	}
	r.listings.Clear()

	if old, derr := decodeDocuments[T]([]docstore.Document{before}); derr == nil {
		r.deleted(old[0])
	}
	return nil
}

// call runs fn with a per-attempt timeout, retrying failures other than a
// missing document with linear backoff.
func (r *Remote[T]) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.opts.retry.Attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, r.opts.timeout)
		err = fn(attemptCtx)
		timedOut := attemptCtx.Err() == context.DeadlineExceeded
		cancel()

		if err == nil || errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		if timedOut {
			err = fmt.Errorf("%w: %w", errors.NewTimeoutError(op, r.opts.timeout.String()), err)
		}
		if ctx.Err() != nil || attempt == r.opts.retry.Attempts {
			break
		}
		r.log.Debug().Err(err).Str("operation", op).Int("attempt", attempt).Msg("retrying remote call")

		select {
		case <-ctx.Done():
			return errors.WrapRemote(r.cfg.Collection, op, ctx.Err())
		case <-time.After(r.opts.retry.Backoff * time.Duration(attempt)):
		}
	}
	return errors.WrapRemote(r.cfg.Collection, op, err)
}

func (r *Remote[T]) remoteFilters(spec catalogs.FilterSpec) []docstore.Filter {
	var filters []docstore.Filter
	for _, f := range r.cfg.RemoteFilters {
		if f == RemoteFilterTeacherID && spec.TeacherID != "" {
			filters = append(filters, docstore.Filter{Field: f, Value: spec.TeacherID})
		}
	}
	return filters
}

// Invalidate drops cached listings, for changes the collection cannot see
// such as a renamed teacher joined into course records.
func (r *Remote[T]) Invalidate() {
	r.listings.Clear()
}

// mergeDocument decodes doc with fields laid over it.
func mergeDocument[T Record](doc docstore.Document, fields map[string]any) (T, error) {
	merged := map[string]any{}
	if len(doc.Body) > 0 {
		if err := json.Unmarshal(doc.Body, &merged); err != nil {
			merged = map[string]any{}
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	merged[fieldID] = doc.ID
	return fromFields[T](merged)
}

func decodeDocuments[T Record](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		fields := map[string]any{}
		if err := json.Unmarshal(doc.Body, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
		fields[fieldID] = doc.ID
		record, err := fromFields[T](fields)
		if err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
		out = append(out, record)
	}
	return out, nil
}

func cacheKey(spec catalogs.FilterSpec) string {
	b, _ := json.Marshal(spec)
	return string(b)
}
