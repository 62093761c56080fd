package cli

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricetool/priceopt/internal/client/config"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := log.Default().Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(old) })
	return &buf
}

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	app := &App{}
	buf := captureLog(t)

	app.setMode(ModeOnline)
	if app.Mode != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.Mode)
	}
	if got := buf.String(); got == "" {
		t.Fatalf("expected log output on mode change, got empty")
	}

	buf.Reset()

	app.setMode(ModeOnline)
	if got := buf.String(); got != "" {
		t.Fatalf("expected no log output when mode doesn't change, got: %q", got)
	}

	app.setMode(ModeOffline)
	if app.Mode != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.Mode)
	}
	if got := buf.String(); got == "" {
		t.Fatalf("expected log output on mode change to offline, got empty")
	}
}

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name string
		app  *App
		want string
	}{
		{name: "empty", app: &App{page: PageProducts}, want: "[products] "},
		{name: "user only", app: &App{page: PageProducts, userName: "alice"}, want: "[products] (alice )"},
		{name: "mode only", app: &App{page: PageOptimization, Mode: ModeOffline}, want: "[optimization] (offline)"},
		{name: "both", app: &App{page: PageProducts, userName: "bob", Mode: ModeOnline}, want: "[products] (bob online)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.app.getStatus())
		})
	}
}

func TestStartOnlineStatusWatcher_FollowsPing(t *testing.T) {
	captureLog(t)

	auth := &fakeAuth{}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	app := &App{config: cfg, authService: auth}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return app.mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	auth.setPingErr(errors.New("down"))
	require.Eventually(t, func() bool { return app.mode() == ModeOffline }, time.Second, 5*time.Millisecond)

	auth.setPingErr(nil)
	require.Eventually(t, func() bool { return app.mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestStartOnlineStatusWatcher_NonPositiveIntervalReturns(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	app := &App{config: cfg, authService: &fakeAuth{}}

	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(context.Background(), 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher should return immediately")
	}
}

func TestRestoreSession(t *testing.T) {
	captureLog(t)
	capturePrintln(t)

	t.Run("valid credential resumes", func(t *testing.T) {
		app, auth, _ := newTestApp(t, loggedInStore(t), &fakeProducts{})
		app.restoreSession(context.Background())
		assert.Equal(t, "alice", app.userName)
		assert.Equal(t, []string{"me"}, auth.called())
	})

	t.Run("absent credential asks to login", func(t *testing.T) {
		out := capturePrintln(t)
		app, auth, _ := newTestApp(t, newMemStore(), &fakeProducts{})
		app.restoreSession(context.Background())
		assert.Empty(t, app.userName)
		assert.Empty(t, auth.called())
		assert.Contains(t, *out, "Please login or register.")
	})

	t.Run("expired credential is cleared", func(t *testing.T) {
		store := newMemStore()
		store.data["token"] = []byte(tokenExpiring(t, time.Now().Add(-time.Minute)))
		store.data["user"] = []byte(`{"id":1,"username":"alice"}`)
		app, _, _ := newTestApp(t, store, &fakeProducts{})

		app.restoreSession(context.Background())

		assert.Empty(t, app.userName)
		assert.Empty(t, store.data)
	})
}

func TestClose_ReleasesEverything(t *testing.T) {
	app, auth, _ := newTestApp(t, newMemStore(), &fakeProducts{})
	c := &countingCloser{}
	app.closers = append(app.closers, c, c)

	app.close(context.Background())

	assert.Equal(t, []string{"close"}, auth.called())
	assert.Equal(t, 2, c.n)
}

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	return nil
}
