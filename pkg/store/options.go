package store

import (
	"time"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
)

// Option configures a Local or Remote store.
type Option func(*options)

type options struct {
	logger  *zerolog.Logger
	clock   func() utc.Time
	retry   RetryPolicy
	timeout time.Duration
	ttl     time.Duration
}

// RetryPolicy controls how remote calls are retried.
type RetryPolicy struct {
	// Attempts is the total number of tries, at least 1.
	Attempts int
	// Backoff is multiplied by the attempt number between tries.
	Backoff time.Duration
}

func defaultOptions() *options {
	return &options{
		logger: logging.Default(),
		clock:  utc.Now,
		retry: RetryPolicy{
			Attempts: constants.MaxRetries,
			Backoff:  constants.RetryBackoff,
		},
		timeout: constants.RemoteTimeout,
		ttl:     constants.CacheTTL,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.retry.Attempts < 1 {
		o.retry.Attempts = 1
	}
	return o
}

// WithLogger sets the logger used for swallowed storage faults.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source used for timestamps and ids.
func WithClock(clock func() utc.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithRetry sets the remote retry policy.
func WithRetry(policy RetryPolicy) Option {
	return func(o *options) {
		o.retry = policy
	}
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithCacheTTL sets how long remote listings are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}
