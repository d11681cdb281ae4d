package coursemap

import (
	"time"

	"github.com/agentstation/coursemap/internal/embedded"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/docstore"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/agentstation/coursemap/pkg/store"
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
)

// Option is a function that configures a Client.
type Option func(*options) error

type options struct {
	kv            kv.Store
	remote        docstore.Client
	logger        *zerolog.Logger
	clock         func() utc.Time
	seed          *embedded.Seed
	cacheTTL      *time.Duration
	retry         *store.RetryPolicy
	remoteTimeout time.Duration
	hashCost      int
}

func defaults() *options {
	return &options{}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithKV sets the device key-value store. An in-memory store is used when unset.
func WithKV(store kv.Store) Option {
	return func(o *options) error {
		if store == nil {
			return errors.NewValidationError("kv", nil, "key-value store cannot be nil")
		}
		o.kv = store
		return nil
	}
}

// WithRemote serves courses and teachers from a document store, falling back
// to the local collections when it fails.
func WithRemote(client docstore.Client) Option {
	return func(o *options) error {
		o.remote = client
		return nil
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithClock sets the time source for timestamps and generated ids.
func WithClock(clock func() utc.Time) Option {
	return func(o *options) error {
		o.clock = clock
		return nil
	}
}

// WithSeed replaces the embedded seed fixtures.
func WithSeed(courses []catalogs.Course, teachers []catalogs.Teacher) Option {
	return func(o *options) error {
		o.seed = &embedded.Seed{Courses: courses, Teachers: teachers}
		return nil
	}
}

// WithCacheTTL sets how long remote listings are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) error {
		if ttl < 0 {
			return errors.NewValidationError("cache_ttl", ttl, "cannot be negative")
		}
		o.cacheTTL = &ttl
		return nil
	}
}

// WithRemoteRetry sets the remote retry policy and per-call timeout.
func WithRemoteRetry(attempts int, backoff, timeout time.Duration) Option {
	return func(o *options) error {
		if attempts < 1 {
			return errors.NewValidationError("remote_retries", attempts, "must be at least 1")
		}
		o.retry = &store.RetryPolicy{Attempts: attempts, Backoff: backoff}
		o.remoteTimeout = timeout
		return nil
	}
}

// WithPasswordHashCost sets the bcrypt cost for account passwords.
func WithPasswordHashCost(cost int) Option {
	return func(o *options) error {
		o.hashCost = cost
		return nil
	}
}

func (o *options) storeOptions() []store.Option {
	opts := []store.Option{store.WithLogger(o.logger), store.WithClock(o.clock)}
	if o.cacheTTL != nil {
		opts = append(opts, store.WithCacheTTL(*o.cacheTTL))
	}
	if o.retry != nil {
		opts = append(opts, store.WithRetry(*o.retry))
	}
	if o.remoteTimeout > 0 {
		opts = append(opts, store.WithTimeout(o.remoteTimeout))
	}
	return opts
}
