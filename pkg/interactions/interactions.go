// Package interactions holds per-user relationship data: wishlist, favorites,
// cart, enrollment and ratings. All of it lives in one in-memory state tree
// that is written to the persisted-reducer root key after every change and
// read back when the store is created.
package interactions

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
)

// Store owns the interaction state.
type Store struct {
	kv    kv.Store
	key   string
	log   zerolog.Logger
	clock func() utc.Time

	mu    sync.RWMutex
	state State
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for swallowed storage faults.
func WithLogger(l *zerolog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = *l
		}
	}
}

// WithClock sets the time source for rating timestamps.
func WithClock(clock func() utc.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithKey overrides the persisted root key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// New creates a store and rehydrates it from kvs. Unreadable state is logged
// and replaced by an empty tree.
func New(ctx context.Context, kvs kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    kvs,
		key:   constants.InteractionsKey,
		log:   *logging.Default(),
		clock: utc.Now,
		state: newState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn().Err(errors.WrapStorage("read", s.key, err)).Msg("starting with empty interactions")
		return
	}
	if !ok || raw == "" {
		return
	}
	state := newState()
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.log.Warn().Err(errors.WrapStorage("read", s.key, err)).Msg("starting with empty interactions")
		return
	}
	state.normalize()
	s.state = state
}

// mutate applies fn under the write lock and snapshots the state when fn
// reports a change.
func (s *Store) mutate(ctx context.Context, fn func(*State) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(&s.state) {
		return
	}
	b, err := json.Marshal(s.state)
	if err == nil {
		err = s.kv.Set(ctx, s.key, string(b))
	}
	if err != nil {
		s.log.Warn().Err(errors.WrapStorage("write", s.key, err)).Msg("interactions kept in memory")
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Reset empties every list and persists the empty tree.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.state = newState()
	s.mu.Unlock()
	s.mutate(ctx, func(*State) bool { return true })
}

// List is a handle on one of the id lists.
type List struct {
	s   *Store
	sel func(*State) *IDList
}

// Wishlist returns the wishlist.
func (s *Store) Wishlist() List {
	return List{s: s, sel: func(st *State) *IDList { return &st.Wishlist }}
}

// Favorites returns the favorites list.
func (s *Store) Favorites() List {
	return List{s: s, sel: func(st *State) *IDList { return &st.Favorites }}
}

// Cart returns the cart.
func (s *Store) Cart() List {
	return List{s: s, sel: func(st *State) *IDList { return &st.Cart }}
}

// Add appends courseID if absent.
func (l List) Add(ctx context.Context, courseID string) {
	l.s.mutate(ctx, func(st *State) bool { return l.sel(st).add(courseID) })
}

// Remove drops courseID if present.
func (l List) Remove(ctx context.Context, courseID string) {
	l.s.mutate(ctx, func(st *State) bool { return l.sel(st).remove(courseID) })
}

// Toggle adds courseID when absent and removes it otherwise. It reports
// whether the id is present afterwards.
func (l List) Toggle(ctx context.Context, courseID string) bool {
	present := false
	l.s.mutate(ctx, func(st *State) bool {
		list := l.sel(st)
		if list.remove(courseID) {
			return true
		}
		present = list.add(courseID)
		return present
	})
	return present
}

// Set replaces the list, dropping duplicates.
func (l List) Set(ctx context.Context, courseIDs []string) {
	l.s.mutate(ctx, func(st *State) bool {
		l.sel(st).Items = dedupe(courseIDs)
		return true
	})
}

// Clear empties the list.
func (l List) Clear(ctx context.Context) {
	l.s.mutate(ctx, func(st *State) bool {
		list := l.sel(st)
		if len(list.Items) == 0 {
			return false
		}
		list.Items = []string{}
		return true
	})
}

// Items returns the ids in insertion order.
func (l List) Items() []string {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return slices.Clone(l.sel(&l.s.state).Items)
}

// Contains reports whether courseID is in the list.
func (l List) Contains(courseID string) bool {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return slices.Contains(l.sel(&l.s.state).Items, courseID)
}

// Join enrolls userID in courseID.
func (s *Store) Join(ctx context.Context, userID, courseID string) {
	s.mutate(ctx, func(st *State) bool {
		ids := st.Enrollment.ByUser[userID]
		if slices.Contains(ids, courseID) {
			return false
		}
		st.Enrollment.ByUser[userID] = append(ids, courseID)
		return true
	})
}

// Unjoin removes userID from courseID.
func (s *Store) Unjoin(ctx context.Context, userID, courseID string) {
	s.mutate(ctx, func(st *State) bool {
		ids := st.Enrollment.ByUser[userID]
		i := slices.Index(ids, courseID)
		if i < 0 {
			return false
		}
		st.Enrollment.ByUser[userID] = slices.Delete(ids, i, i+1)
		return true
	})
}

// ClearUser drops every enrollment of userID.
func (s *Store) ClearUser(ctx context.Context, userID string) {
	s.mutate(ctx, func(st *State) bool {
		if _, ok := st.Enrollment.ByUser[userID]; !ok {
			return false
		}
		delete(st.Enrollment.ByUser, userID)
		return true
	})
}

// ByUser returns the courses userID is enrolled in.
func (s *Store) ByUser(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Enrollment.ByUser[userID])
}

// IsEnrolled reports whether userID is enrolled in courseID.
func (s *Store) IsEnrolled(userID, courseID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.state.Enrollment.ByUser[userID], courseID)
}

// EnrolledCount scans every user's enrollments for courseID.
// The cost grows with users times courses.
func (s *Store) EnrolledCount(courseID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ids := range s.state.Enrollment.ByUser {
		if slices.Contains(ids, courseID) {
			n++
		}
	}
	return n
}

// EnrolledCounts returns the enrolled count of every course with at least one user.
func (s *Store) EnrolledCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, ids := range s.state.Enrollment.ByUser {
		for _, id := range ids {
			counts[id]++
		}
	}
	return counts
}

// Users returns the ids of users with enrollments, sorted.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := slices.Collect(maps.Keys(s.state.Enrollment.ByUser))
	sort.Strings(users)
	return users
}

// UpsertRating records userID's rating of courseID, replacing any earlier one.
// The rating is clamped to [1,5].
func (s *Store) UpsertRating(ctx context.Context, courseID, userID string, rating float64, comment string) Rating {
	entry := Rating{
		UserID:    userID,
		Rating:    ClampRating(rating),
		Comment:   comment,
		CreatedAt: catalogs.FormatTimestamp(s.clock()),
	}
	s.mutate(ctx, func(st *State) bool {
		list := st.Ratings.ByCourse[courseID]
		for i := range list {
			if list[i].UserID == userID {
				list[i] = entry
				return true
			}
		}
		st.Ratings.ByCourse[courseID] = append(list, entry)
		return true
	})
	return entry
}

// RemoveRating drops userID's rating of courseID.
func (s *Store) RemoveRating(ctx context.Context, courseID, userID string) {
	s.mutate(ctx, func(st *State) bool {
		list := st.Ratings.ByCourse[courseID]
		i := slices.IndexFunc(list, func(r Rating) bool { return r.UserID == userID })
		if i < 0 {
			return false
		}
		st.Ratings.ByCourse[courseID] = slices.Delete(list, i, i+1)
		return true
	})
}

// CourseRatings returns the ratings of courseID.
func (s *Store) CourseRatings(courseID string) []Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Ratings.ByCourse[courseID])
}

// AverageRating is the mean rating of courseID rounded to one decimal, or 0.
func (s *Store) AverageRating(courseID string) float64 {
	list := s.CourseRatings(courseID)
	if len(list) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range list {
		sum += r.Rating
	}
	return roundOne(sum / float64(len(list)))
}

// RatingCount is the number of ratings of courseID.
func (s *Store) RatingCount(courseID string) int {
	return len(s.CourseRatings(courseID))
}

// ApplyToCourses returns copies of courses with locally recorded enrollment
// counts and rating aggregates in place of the catalog values, where any exist.
func (s *Store) ApplyToCourses(courses []catalogs.Course) []catalogs.Course {
	counts := s.EnrolledCounts()
	out := make([]catalogs.Course, len(courses))
	for i, c := range courses {
		c = c.Clone()
		if n := counts[c.ID]; n > 0 {
			c.EnrolledCount = n
		}
		if n := s.RatingCount(c.ID); n > 0 {
			c.Rating = catalogs.Float(s.AverageRating(c.ID))
			c.RatingCount = n
		}
		out[i] = c
	}
	return out
}
