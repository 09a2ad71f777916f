package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/toonlaunch/toonlaunch/internal/launcher"
	"github.com/toonlaunch/toonlaunch/internal/login"
)

// fakeGame serves the parts of the game API the CLI talks to. Login replies
// are consumed in order.
type fakeGame struct {
	t       *testing.T
	mu      sync.Mutex
	replies []string
	forms   []url.Values
	server  *httptest.Server
}

func newFakeGame(t *testing.T, loginReplies ...string) *fakeGame {
	t.Helper()
	g := &fakeGame{t: t, replies: loginReplies}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", g.handleLogin)
	mux.HandleFunc("/api/invasions", serveJSON(`{
		"error": null,
		"invasions": {
			"Gulp Gulch": {"asOf": 1700000000, "type": "Flunky", "progress": "120/4000"},
			"Zoink Falls": {"asOf": 1700000000, "type": "Big Cheese", "progress": "10/1000000"}
		},
		"lastUpdated": 1700000000
	}`))
	mux.HandleFunc("/api/population", serveJSON(`{
		"lastUpdated": 1700000000,
		"totalPopulation": 1500,
		"populationByDistrict": {"Gulp Gulch": 900, "Zoink Falls": 600},
		"statusByDistrict": {"Gulp Gulch": "online", "Zoink Falls": "online"}
	}`))
	mux.HandleFunc("/api/fieldoffices", serveJSON(`{
		"lastUpdated": 1700000000,
		"fieldOffices": {
			"3100": {"department": "s", "difficulty": 1, "annexes": 4, "open": true},
			"5300": {"department": "s", "difficulty": 0, "annexes": 0, "open": false}
		}
	}`))
	mux.HandleFunc("/api/releasenotes", serveJSON(`[
		{"noteId": 312, "slug": "ttr-patch-312", "date": "2026-10-01"},
		{"noteId": 311, "slug": "ttr-patch-311", "date": "2026-09-20"},
		{"noteId": 310, "slug": "ttr-patch-310", "date": "2026-09-02"}
	]`))

	g.server = httptest.NewServer(mux)
	t.Cleanup(g.server.Close)
	return g
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func (g *fakeGame) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !assertPOSTForm(g.t, r) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	g.forms = append(g.forms, r.PostForm)
	i := len(g.forms) - 1
	g.mu.Unlock()

	if i >= len(g.replies) {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = io.WriteString(w, g.replies[i])
}

func assertPOSTForm(t *testing.T, r *http.Request) bool {
	t.Helper()
	if r.Method != http.MethodPost {
		t.Errorf("login method = %s, want POST", r.Method)
		return false
	}
	if err := r.ParseForm(); err != nil {
		t.Errorf("parse login form: %v", err)
		return false
	}
	return true
}

func (g *fakeGame) loginForms() []url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]url.Values(nil), g.forms...)
}

// apiArgs points a command at the fake game.
func (g *fakeGame) apiArgs() []string {
	return []string{
		"--login-url", g.server.URL + "/api/login?format=json",
	}
}

func (g *fakeGame) baseURLArgs() []string {
	return []string{"--api-base-url", g.server.URL + "/api"}
}

// fakeLauncher records launches instead of starting a process.
type fakeLauncher struct {
	mu        sync.Mutex
	calls     int
	platforms []launcher.Platform
	env       []string
	err       error
}

func (f *fakeLauncher) Launch(_ context.Context, platform launcher.Platform, env []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.platforms = append(f.platforms, platform)
	f.env = append([]string(nil), env...)
	return f.err
}

func (f *fakeLauncher) factory() func(launcher.Config, *slog.Logger) login.Launcher {
	return func(launcher.Config, *slog.Logger) login.Launcher { return f }
}

// syncBuffer is a bytes.Buffer safe for a command writing in the background.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testDeps(t *testing.T, deps Deps) Deps {
	t.Helper()
	if deps.DefaultConfigPath == nil {
		dir := t.TempDir()
		deps.DefaultConfigPath = func() string { return filepath.Join(dir, "config.yaml") }
	}
	if deps.LogOutput == nil {
		deps.LogOutput = io.Discard
	}
	if deps.SecretReader == nil {
		deps.SecretReader = func(string) (string, error) {
			t.Error("unexpected password prompt")
			return "", context.Canceled
		}
	}
	if deps.Sleeper == nil {
		deps.Sleeper = func(context.Context, time.Duration) error { return nil }
	}
	return deps
}

// execute runs the CLI with args and returns everything it printed.
func execute(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), t, deps, args...)
}

func executeContext(ctx context.Context, t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(testDeps(t, deps))
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func decodeJSON(t *testing.T, s string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(s), v))
}
