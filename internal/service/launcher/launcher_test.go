package launcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/violet/backend/internal/config"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fail  map[string]bool
	urls  []string
}

func (r *recorder) Start(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.fail[name] {
		return errors.New("exec: not found")
	}
	return nil
}

func (r *recorder) open(u string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, u)
	return nil
}

func newTestLauncher(t *testing.T, goos string, cfg config.LauncherConfig, extra ...Option) (*Launcher, *recorder) {
	t.Helper()
	rec := &recorder{fail: map[string]bool{}}
	opts := append([]Option{WithGOOS(goos), WithRunner(rec), WithURLOpener(rec.open)}, extra...)
	return New(cfg, opts...), rec
}

func TestOpenKnownApp(t *testing.T) {
	l, rec := newTestLauncher(t, "windows", config.LauncherConfig{})

	assert.Equal(t, "Opening notepad for you, boss!", l.Open(context.Background(), " Notepad "))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"cmd", "/c", "start", "", "notepad.exe"}, rec.calls[0])
}

func TestOpenUnknownApp(t *testing.T) {
	ctx := context.Background()

	l, rec := newTestLauncher(t, "linux", config.LauncherConfig{})
	assert.Equal(t, "Attempting to launch htop, boss!", l.Open(ctx, "htop"))
	assert.Equal(t, []string{"gtk-launch", "htop"}, rec.calls[0])

	rec.fail["gtk-launch"] = true
	assert.Equal(t, "Sorry boss, I couldn't find nosuchapp", l.Open(ctx, "nosuchapp"))

	w, wrec := newTestLauncher(t, "windows", config.LauncherConfig{})
	assert.Equal(t, "Attempting to launch paint.net, boss!", w.Open(ctx, "paint.net"))
	assert.Equal(t, []string{"cmd", "/c", "start", "", "paint.net"}, wrec.calls[0])
}

func TestOpenRefusesPowerCommands(t *testing.T) {
	ctx := context.Background()

	for _, goos := range []string{"linux", "darwin", "windows"} {
		l, rec := newTestLauncher(t, goos, config.LauncherConfig{AllowShutdown: false})
		for _, name := range []string{"shutdown", "reboot", "poweroff", "halt", "shutdown now", "systemctl poweroff"} {
			assert.Equal(t, shutdownDisabled, l.Open(ctx, name), "%s on %s", name, goos)
		}
		assert.Empty(t, rec.calls, goos)
	}

	l, rec := newTestLauncher(t, "linux", config.LauncherConfig{AllowShutdown: true})
	assert.Equal(t, "Ask me to shut down the laptop instead, boss.", l.Open(ctx, "shutdown"))
	assert.Empty(t, rec.calls)
}

func TestOpenRefusesShellMetacharacters(t *testing.T) {
	ctx := context.Background()
	l, rec := newTestLauncher(t, "windows", config.LauncherConfig{})

	for _, name := range []string{"calc&whoami", "notes|more", "a;b", "$(id)", "`id`", "x>y", "-h", `c:\windows`, "%comspec%"} {
		assert.Contains(t, l.Open(ctx, name), "I can't open", name)
	}
	assert.Empty(t, rec.calls)
}

func TestOpenKnownAppFailure(t *testing.T) {
	l, rec := newTestLauncher(t, "darwin", config.LauncherConfig{})
	rec.fail["open"] = true

	assert.Equal(t, "Sorry boss, I couldn't open safari", l.Open(context.Background(), "safari"))
}

func TestSearch(t *testing.T) {
	l, rec := newTestLauncher(t, "linux", config.LauncherConfig{})

	got := l.Search(context.Background(), "golang generics")
	assert.Equal(t, "Searching Google for 'golang generics' for you, boss!", got)
	assert.Equal(t, []string{"https://www.google.com/search?q=golang+generics"}, rec.urls)
}

func TestPlayYouTube(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_query") == "lofi beats" {
			_, _ = w.Write([]byte(`var ytInitialData = {"videoRenderer":{"videoId":"jfKfPfyJRdk"}}`))
			return
		}
		_, _ = w.Write([]byte(`<html>nothing</html>`))
	}))
	defer srv.Close()

	l, rec := newTestLauncher(t, "linux", config.LauncherConfig{},
		WithHTTPClient(srv.Client()), WithYouTubeBase(srv.URL+"/"))

	ctx := context.Background()
	assert.Equal(t, "🎵 Playing 'lofi beats' on YouTube for you, boss!", l.PlayYouTube(ctx, "lofi beats"))
	assert.Equal(t, srv.URL+"/watch?v=jfKfPfyJRdk", rec.urls[0])

	assert.Equal(t, "🎵 I couldn't auto-play, so I opened the search results for 'obscure'.", l.PlayYouTube(ctx, "obscure"))
	assert.Equal(t, srv.URL+"/results?search_query=obscure", rec.urls[1])

	assert.Equal(t, "What would you like me to play on YouTube, boss?", l.PlayYouTube(ctx, "  "))
}

func TestShutdownRequiresOptIn(t *testing.T) {
	ctx := context.Background()

	l, rec := newTestLauncher(t, "windows", config.LauncherConfig{})
	assert.Equal(t, shutdownDisabled, l.Shutdown(ctx))
	assert.Empty(t, rec.calls)

	l, rec = newTestLauncher(t, "windows", config.LauncherConfig{AllowShutdown: true})
	assert.Equal(t, "Shutting down the laptop in 5 seconds, boss. Goodbye!", l.Shutdown(ctx))
	assert.Equal(t, []string{"shutdown", "/s", "/t", "5"}, rec.calls[0])
}

func TestOpenClock(t *testing.T) {
	l, rec := newTestLauncher(t, "windows", config.LauncherConfig{})

	require.NoError(t, l.OpenClock(context.Background()))
	assert.Equal(t, "ms-clock:", rec.calls[0][len(rec.calls[0])-1])
}

func TestLoadApps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apps:\n  Obsidian:\n    command: obsidian\n    args: [--new-window]\n"), 0o644))

	apps, err := LoadApps(path)
	require.NoError(t, err)
	assert.Equal(t, App{Command: "obsidian", Args: []string{"--new-window"}}, apps["obsidian"])

	require.NoError(t, os.WriteFile(path, []byte("apps:\n  broken: {}\n"), 0o644))
	_, err = LoadApps(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("apps: [not, a, map"), 0o644))
	_, err = LoadApps(path)
	assert.Error(t, err)
}

func TestWatchAppsReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apps:\n  notes:\n    command: first\n"), 0o644))

	l, rec := newTestLauncher(t, "linux", config.LauncherConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.WatchApps(ctx, path) }()

	require.Eventually(t, func() bool {
		app, ok := l.lookup("notes")
		return ok && app.Command == "first"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("apps:\n  notes:\n    command: second\n"), 0o644))
	require.Eventually(t, func() bool {
		app, _ := l.lookup("notes")
		return app.Command == "second"
	}, 3*time.Second, 20*time.Millisecond)

	assert.True(t, strings.HasPrefix(l.Open(context.Background(), "notes"), "Opening notes"))
	assert.Equal(t, []string{"second"}, rec.calls[0])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchApps did not return after cancel")
	}
}
