// Package coursemap is the entry point of the course marketplace data layer.
// It wires the course and teacher collections, per-user interactions,
// local accounts and chat over one device key-value store, and optionally
// serves the catalog from a remote document store.
//
// Example usage:
//
//	cm, err := coursemap.New(coursemap.WithKV(store))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cm.Close()
//
//	page, err := cm.ListCourses(ctx, catalogs.FilterSpec{
//	    Search: "react",
//	    SortBy: catalogs.SortPopular,
//	}, 1, 10)
package coursemap

import (
	"context"
	"io"

	"github.com/agentstation/coursemap/internal/embedded"
	"github.com/agentstation/coursemap/pkg/accounts"
	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/chat"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/interactions"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/coursemap/pkg/store"
	"github.com/rs/zerolog"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client is the course marketplace data layer.
type Client interface {
	// Courses is the course collection.
	Courses() store.Store[catalogs.Course]
	// Teachers is the teacher collection.
	Teachers() store.Store[catalogs.Teacher]
	// Interactions holds wishlist, favorites, cart, enrollment and ratings.
	Interactions() *interactions.Store
	// Accounts holds local users and the session.
	Accounts() *accounts.Accounts
	// Chat holds teacher/student threads.
	Chat() *chat.Chat

	// ListCourses filters, sorts and pages the catalog with local
	// enrollment and rating data applied.
	ListCourses(ctx context.Context, spec catalogs.FilterSpec, page, perPage int) (catalogs.Page[catalogs.Course], error)
	// ScrollCourses returns every course up to page as an infinite list
	// shows them, and whether more remain.
	ScrollCourses(ctx context.Context, spec catalogs.FilterSpec, page, pageSize int) ([]catalogs.Course, bool, error)

	// Admin provides fixture and reset operations
	Admin

	// Hooks provides access to course change callbacks
	Hooks

	// Close releases the key-value and remote stores when they hold resources.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	log     zerolog.Logger
	seed    embedded.Seed

	localCourses  *store.Local[catalogs.Course]
	localTeachers *store.Local[catalogs.Teacher]

	// remote stores are nil unless a document store is configured
	remoteCourses  *store.Remote[catalogs.Course]
	remoteTeachers *store.Remote[catalogs.Teacher]

	courses  store.Store[catalogs.Course]
	teachers store.Store[catalogs.Teacher]

	interactions *interactions.Store
	accounts     *accounts.Accounts
	chat         *chat.Chat
}

// New creates a Client. Empty collections are seeded from the embedded
// fixtures or the WithSeed data.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.kv == nil {
		o.kv = kv.NewMemory()
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}

	seed := embedded.Seed{}
	if o.seed != nil {
		seed = *o.seed
	} else if seed, err = embedded.Load(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	c := &client{
		options: o,
		log:     *o.logger,
		seed:    seed,
	}
	storeOpts := o.storeOptions()

	c.localTeachers = store.NewLocal(ctx, o.kv, c.teacherConfig(), storeOpts...)
	c.localCourses = store.NewLocal(ctx, o.kv, c.courseConfig(), storeOpts...)
	c.courses, c.teachers = c.localCourses, c.localTeachers

	if o.remote != nil {
		c.remoteTeachers = store.NewRemote(o.remote, store.Store[catalogs.Teacher](c.localTeachers), c.teacherConfig(), storeOpts...)
		c.remoteCourses = store.NewRemote(o.remote, store.Store[catalogs.Course](c.localCourses), c.courseConfig(), storeOpts...)
		c.courses, c.teachers = c.remoteCourses, c.remoteTeachers
		c.flushCoursesOnTeacherChange()
	}

	c.interactions = interactions.New(ctx, o.kv, interactions.WithLogger(o.logger), interactions.WithClock(o.clock))
	accountOpts := []accounts.Option{accounts.WithLogger(o.logger), accounts.WithStoreOptions(store.WithClock(o.clock))}
	if o.hashCost > 0 {
		accountOpts = append(accountOpts, accounts.WithHashCost(o.hashCost))
	}
	c.accounts = accounts.New(ctx, o.kv, accountOpts...)
	c.chat = chat.New(o.kv, chat.WithLogger(o.logger), chat.WithClock(o.clock))

	c.log.Debug().
		Int("courses", c.localCourses.Count(ctx)).
		Int("teachers", c.localTeachers.Count(ctx)).
		Bool("remote", o.remote != nil).
		Msg("coursemap client ready")
	return c, nil
}

func (c *client) courseConfig() store.Config[catalogs.Course] {
	return store.Config[catalogs.Course]{
		Key:        constants.CoursesKey,
		Resource:   "course",
		Collection: constants.CoursesCollection,
		Seed:       c.seed.Courses,
		Normalize:  c.normalizeCourses,
		Filter:     catalogs.Query[catalogs.Course],
		Derived:    []string{"instructor"},
		RemoteFilters: []string{store.RemoteFilterTeacherID},
	}
}

func (c *client) teacherConfig() store.Config[catalogs.Teacher] {
	return store.Config[catalogs.Teacher]{
		Key:        constants.TeachersKey,
		Resource:   "teacher",
		Collection: constants.TeachersCollection,
		Seed:       c.seed.Teachers,
		Normalize: func(_ context.Context, items []catalogs.Teacher) []catalogs.Teacher {
			out := make([]catalogs.Teacher, len(items))
			for i, t := range items {
				out[i] = catalogs.NormalizeTeacher(t)
			}
			return out
		},
		Filter: catalogs.Query[catalogs.Teacher],
	}
}

// normalizeCourses joins instructors from the active teacher collection.
func (c *client) normalizeCourses(ctx context.Context, items []catalogs.Course) []catalogs.Course {
	teachers, err := c.teachers.GetAll(ctx, catalogs.FilterSpec{})
	if err != nil {
		c.log.Warn().Err(err).Msg("teachers unavailable, instructors use placeholders")
		teachers = nil
	}
	return catalogs.NormalizeCourses(items, teachers)
}

// Courses returns the course collection.
func (c *client) Courses() store.Store[catalogs.Course] {
	return c.courses
}

// Teachers returns the teacher collection.
func (c *client) Teachers() store.Store[catalogs.Teacher] {
	return c.teachers
}

// Interactions returns the interaction store.
func (c *client) Interactions() *interactions.Store {
	return c.interactions
}

// Accounts returns the account manager.
func (c *client) Accounts() *accounts.Accounts {
	return c.accounts
}

// Chat returns the chat store.
func (c *client) Chat() *chat.Chat {
	return c.chat
}

// ListCourses fetches, overlays and queries the catalog, then returns one page.
func (c *client) ListCourses(ctx context.Context, spec catalogs.FilterSpec, page, perPage int) (catalogs.Page[catalogs.Course], error) {
	courses, err := c.queryCourses(ctx, spec)
	if err != nil {
		return catalogs.Page[catalogs.Course]{}, err
	}
	return catalogs.Paginate(courses, page, perPage), nil
}

// ScrollCourses is ListCourses for a growing list.
func (c *client) ScrollCourses(ctx context.Context, spec catalogs.FilterSpec, page, pageSize int) ([]catalogs.Course, bool, error) {
	courses, err := c.queryCourses(ctx, spec)
	if err != nil {
		return nil, false, err
	}
	visible, more := catalogs.Window(courses, page, pageSize)
	return visible, more, nil
}

// queryCourses fetches courses with only the server-side filters, applies the
// interaction overlay, then filters and sorts the result.
func (c *client) queryCourses(ctx context.Context, spec catalogs.FilterSpec) ([]catalogs.Course, error) {
	courses, err := c.courses.GetAll(ctx, catalogs.FilterSpec{TeacherID: spec.TeacherID})
	if err != nil {
		return nil, err
	}
	return catalogs.Query(c.interactions.ApplyToCourses(courses), spec), nil
}

// Close releases the key-value and remote stores when they hold resources.
func (c *client) Close() error {
	var errs []error
	if closer, ok := c.options.kv.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if closer, ok := c.options.remote.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
