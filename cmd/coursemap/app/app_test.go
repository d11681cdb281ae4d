package app

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/pkg/catalogs"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	t.Setenv("COURSEMAP_STORE", StoreMemory)
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", append([]Option{WithLogger(&logger)}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

// execute runs the root command and returns what it wrote.
func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_Client_Singleton verifies that Client() returns the same instance.
func TestApp_Client_Singleton(t *testing.T) {
	app := newTestApp(t)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]coursemap.Client, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = app.Client()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Goroutine %d: Client() failed: %v", i, err)
		}
	}
	for i, c := range results[1:] {
		if c != results[0] {
			t.Errorf("Goroutine %d got a different client", i+1)
		}
	}
}

// TestApp_SQLiteStore verifies data survives a restart with the sqlite store.
func TestApp_SQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coursemap.db")
	config := &Config{Store: StoreSQLite, StorePath: path, RemoteRetries: 1}

	first := newTestApp(t, WithConfig(config))
	if _, err := execute(t, first, "wishlist", "add", "1", "-o", "json"); err != nil {
		t.Fatalf("wishlist add failed: %v", err)
	}
	if err := first.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	second := newTestApp(t, WithConfig(&Config{Store: StoreSQLite, StorePath: path, RemoteRetries: 1}))
	out, err := execute(t, second, "wishlist", "list", "--ids", "-o", "json")
	if err != nil {
		t.Fatalf("wishlist list failed: %v", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(out), &ids); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(ids) != 1 || ids[0] != "1" {
		t.Errorf("wishlist = %v, want [1]", ids)
	}
}

// TestApp_WithOptions tests functional options pattern.
func TestApp_WithOptions(t *testing.T) {
	customConfig := &Config{Store: StoreMemory, RemoteRetries: 1, Format: "json"}
	customLogger := zerolog.Nop()
	client, err := coursemap.New(coursemap.WithLogger(&customLogger))
	if err != nil {
		t.Fatalf("coursemap.New() failed: %v", err)
	}

	app, err := New("1.0.0", "test", "2024-01-01", "test",
		WithConfig(customConfig),
		WithLogger(&customLogger),
		WithClient(client),
	)
	if err != nil {
		t.Fatalf("New() with options failed: %v", err)
	}

	if app.Config() != customConfig {
		t.Error("WithConfig() option not applied")
	}
	if app.Logger() != &customLogger {
		t.Error("WithLogger() option not applied")
	}
	if got, _ := app.Client(); got != client {
		t.Error("WithClient() option not applied")
	}
	if app.OutputFormat() != "json" {
		t.Errorf("OutputFormat() = %q, want json", app.OutputFormat())
	}

	if _, err := New("1.0.0", "test", "2024-01-01", "test", WithConfig(&Config{Store: "redis"})); err == nil {
		t.Error("WithConfig() accepted an invalid config")
	}
}

// TestApp_Execute drives the command tree end to end.
func TestApp_Execute(t *testing.T) {
	app := newTestApp(t)

	out, err := execute(t, app, "courses", "list", "--sort", "rating", "-o", "json")
	if err != nil {
		t.Fatalf("courses list failed: %v", err)
	}
	var courses []catalogs.Course
	if err := json.Unmarshal([]byte(out), &courses); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(courses) != 2 || courses[0].ID != "2" {
		t.Errorf("courses by rating = %v", courses)
	}

	if _, err := execute(t, app, "enroll", "join", "u-1", "1"); err != nil {
		t.Fatalf("enroll join failed: %v", err)
	}
	out, err = execute(t, app, "courses", "get", "1", "-o", "json")
	if err != nil {
		t.Fatalf("courses get failed: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &courses); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if courses[0].EnrolledCount != 1 {
		t.Errorf("EnrolledCount = %d, want the local count 1", courses[0].EnrolledCount)
	}

	out, err = execute(t, app, "courses", "list", "-o", "table")
	if err != nil {
		t.Fatalf("courses list table failed: %v", err)
	}
	if !strings.Contains(out, "React Native") {
		t.Errorf("table output missing course title:\n%s", out)
	}
}

// TestApp_ExecuteRejectsBadFlags verifies global flag validation.
func TestApp_ExecuteRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"courses", "list", "-o", "xml"}},
		{"store", []string{"courses", "list", "--store", "redis"}},
		{"sqlite without path", []string{"courses", "list", "--store", "sqlite", "--store-path", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			if _, err := execute(t, app, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// TestApp_VersionCommand verifies version output.
func TestApp_VersionCommand(t *testing.T) {
	app := newTestApp(t)
	out, err := execute(t, app, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "coursemap 1.0.0") {
		t.Errorf("version output = %q", out)
	}
}

// TestApp_ShutdownWithoutClient verifies shutdown works even if the client never initialized.
func TestApp_ShutdownWithoutClient(t *testing.T) {
	app := newTestApp(t)
	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}
