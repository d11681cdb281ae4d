package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agentstation/coursemap/pkg/catalogs"
	"github.com/agentstation/coursemap/pkg/docstore"
	pkgerrors "github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/kv"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/coursemap/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient wraps a memory document store, counting queries and failing
// the first n calls.
type countingClient struct {
	*docstore.Memory
	mu       sync.Mutex
	failures int
	queries  int
	filters  []docstore.Filter
}

func (c *countingClient) fail() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return errors.New("unavailable")
	}
	return nil
}

func (c *countingClient) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	c.mu.Lock()
	c.queries++
	c.filters = filters
	c.mu.Unlock()
	if err := c.fail(); err != nil {
		return nil, err
	}
	return c.Memory.Query(ctx, collection, filters...)
}

func (c *countingClient) Add(ctx context.Context, collection, id string, body json.RawMessage) (string, error) {
	if err := c.fail(); err != nil {
		return "", err
	}
	return c.Memory.Add(ctx, collection, id, body)
}

func (c *countingClient) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := c.fail(); err != nil {
		return docstore.Document{}, err
	}
	return c.Memory.Get(ctx, collection, id)
}

func remoteConfig() store.Config[catalogs.Course] {
	cfg := courseConfig()
	cfg.Collection = "courses"
	cfg.RemoteFilters = []string{store.RemoteFilterTeacherID}
	return cfg
}

func newRemote(t *testing.T, client docstore.Client, opts ...store.Option) (*store.Remote[catalogs.Course], *store.Local[catalogs.Course]) {
	t.Helper()
	local := newCourses(t, kv.NewMemory())
	opts = append([]store.Option{
		store.WithLogger(logging.NewNopLogger()),
		store.WithRetry(store.RetryPolicy{Attempts: 3, Backoff: time.Millisecond}),
	}, opts...)
	return store.NewRemote[catalogs.Course](client, local, remoteConfig(), opts...), local
}

func addDoc(t *testing.T, m *docstore.Memory, id string, body string) {
	t.Helper()
	_, err := m.Add(context.Background(), "courses", id, json.RawMessage(body))
	require.NoError(t, err)
}

func TestRemoteGetAllPushesEqualityFilters(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{Memory: docstore.NewMemory()}
	addDoc(t, client.Memory, "r1", `{"title":"Remote Go","teacherId":"1","level":"Beginner","price":20}`)
	addDoc(t, client.Memory, "r2", `{"title":"Remote Rust","teacherId":"1","level":"Advanced","price":120}`)
	addDoc(t, client.Memory, "r3", `{"title":"Remote Go Design","teacherId":"2","price":20}`)

	remote, _ := newRemote(t, client)

	got, err := remote.GetAll(ctx, catalogs.FilterSpec{TeacherID: "1", Search: "go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, courseIDs(got))
	assert.Equal(t, []docstore.Filter{{Field: "teacherId", Value: "1"}}, client.filters)

	got, err = remote.GetAll(ctx, catalogs.FilterSpec{Level: "Advanced"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, courseIDs(got))
	assert.Empty(t, client.filters)
}

func TestRemoteLevelMatchesDerivedLevel(t *testing.T) {
	ctx := context.Background()
	client := docstore.NewMemory()
	addDoc(t, client, "r1", `{"title":"Intro","price":49.99}`)
	addDoc(t, client, "r2", `{"title":"Basics","price":39.99}`)
	addDoc(t, client, "r3", `{"title":"Deep Dive","price":150}`)
	remote, _ := newRemote(t, client)

	tests := []struct {
		level string
		want  []string
	}{
		{level: "Beginner", want: []string{"r1", "r2"}},
		{level: "Advanced", want: []string{"r3"}},
		{level: "Intermediate", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := remote.GetAll(ctx, catalogs.FilterSpec{Level: tt.level})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, courseIDs(got))
		})
	}
}

func TestRemoteUpdateRejectsUndecodablePatch(t *testing.T) {
	ctx := context.Background()
	client := docstore.NewMemory()
	addDoc(t, client, "r1", `{"title":"First","price":20}`)
	addDoc(t, client, "r2", `{"title":"Second","price":30}`)
	remote, _ := newRemote(t, client)

	_, err := remote.Update(ctx, "r1", store.Patch{"price": "abc"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))

	doc, err := client.Get(ctx, "courses", "r1")
	require.NoError(t, err)
	assert.NotContains(t, string(doc.Body), "abc")

	got, err := remote.GetAll(ctx, catalogs.FilterSpec{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2"}, courseIDs(got))
}

func TestRemoteUnreadableDocumentFallsBack(t *testing.T) {
	ctx := context.Background()
	client := docstore.NewMemory()
	addDoc(t, client, "1", `{"title":"Broken","price":"abc"}`)
	remote, local := newRemote(t, client)

	got, err := remote.GetByID(ctx, "1")
	require.NoError(t, err)
	want, err := local.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
}

func TestRemoteCachesListings(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{Memory: docstore.NewMemory()}
	addDoc(t, client.Memory, "r1", `{"title":"Cached"}`)
	remote, _ := newRemote(t, client)

	_, err := remote.GetAll(ctx, catalogs.FilterSpec{})
	require.NoError(t, err)
	_, err = remote.GetAll(ctx, catalogs.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 1, client.queries)

	_, err = remote.Create(ctx, catalogs.Course{Title: "Invalidates"})
	require.NoError(t, err)

	got, err := remote.GetAll(ctx, catalogs.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 2, client.queries)
	assert.Len(t, got, 2)
}

func TestRemoteRetriesThenSucceeds(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{Memory: docstore.NewMemory(), failures: 2}
	addDoc(t, client.Memory, "r1", `{"title":"Eventually"}`)
	remote, _ := newRemote(t, client)

	got, err := remote.GetAll(ctx, catalogs.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, courseIDs(got))
	assert.Equal(t, 3, client.queries)
}

func TestRemoteFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{Memory: docstore.NewMemory(), failures: 100}
	remote, local := newRemote(t, client)

	got, err := remote.GetAll(ctx, catalogs.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, courseIDs(got), "seed data from the local store")
	assert.Equal(t, 3, client.queries)

	created, err := remote.Create(ctx, catalogs.Course{Title: "Offline create"})
	require.NoError(t, err)
	_, err = local.GetByID(ctx, created.ID)
	assert.NoError(t, err)
}

func TestRemoteNotFoundIsNotRetried(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{Memory: docstore.NewMemory()}
	remote, _ := newRemote(t, client)

	_, err := remote.GetByID(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = remote.Update(ctx, "missing", store.Patch{"title": "x"})
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.True(t, pkgerrors.IsNotFound(remote.Delete(ctx, "missing")))
}

func TestRemoteCRUD(t *testing.T) {
	ctx := context.Background()
	client := docstore.NewMemory()
	remote, _ := newRemote(t, client)

	var events []string
	remote.OnCreated(func(c catalogs.Course) { events = append(events, "created "+c.Title) })
	remote.OnUpdated(func(old, new catalogs.Course) { events = append(events, "updated "+old.Title+"->"+new.Title) })
	remote.OnDeleted(func(c catalogs.Course) { events = append(events, "deleted "+c.Title) })

	created, err := remote.Create(ctx, catalogs.Course{Title: "Remote", Price: catalogs.Float(120), Instructor: &catalogs.Instructor{Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, catalogs.LevelAdvanced, created.Level)
	assert.NotEmpty(t, created.ID)

	doc, err := client.Get(ctx, "courses", created.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(doc.Body), "instructor")

	updated, err := remote.Update(ctx, created.ID, store.Patch{"title": "Renamed", "createdAt": "1999"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 120.0, *updated.Price)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	require.NoError(t, remote.Delete(ctx, created.ID))
	_, err = remote.GetByID(ctx, created.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.Equal(t, []string{"created Remote", "updated Remote->Renamed", "deleted Renamed"}, events)
}

// slowClient blocks every query until its context ends.
type slowClient struct {
	*docstore.Memory
}

func (slowClient) Query(ctx context.Context, _ string, _ ...docstore.Filter) ([]docstore.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRemoteTimeoutFallsBack(t *testing.T) {
	ctx := context.Background()
	tl := logging.NewTestLogger(t)
	remote, _ := newRemote(t, slowClient{docstore.NewMemory()},
		store.WithTimeout(5*time.Millisecond),
		store.WithRetry(store.RetryPolicy{Attempts: 1}),
		store.WithLogger(tl.Logger),
	)

	got, err := remote.GetAll(ctx, catalogs.FilterSpec{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	tl.AssertContains(t, "timed out")
}
