package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSlog(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestSlog(t)
	ctx := context.Background()

	log.Debug(ctx, "fetch started", "seq", 1)
	log.Info(ctx, "products loaded", "count", 3)
	log.Warn(ctx, "serving cached products", "offline", true)
	log.Error(ctx, "delete failed", "id", 7)

	out := buf.String()
	for _, s := range []string{
		"level=DEBUG", `msg="fetch started"`, "seq=1",
		"level=INFO", `msg="products loaded"`, "count=3",
		"level=WARN", "offline=true",
		"level=ERROR", "id=7",
	} {
		assert.Contains(t, out, s)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestSlog(t)

	log.With("page", "products").Info(context.Background(), "render", "rows", 2)

	out := buf.String()
	assert.Contains(t, out, "page=products")
	assert.Contains(t, out, "rows=2")
}

func TestNop_Discards(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "nothing")
	l.With("k", "v").Error(context.Background(), "still nothing")
}

func TestSlogLogger_ContextFields(t *testing.T) {
	log, buf := newTestSlog(t)
	ctx := ContextWith(context.Background(), "command", "products")
	ctx = ContextWith(ctx, "page", "optimization")

	log.Info(ctx, "loaded", "count", 4)

	out := buf.String()
	assert.Contains(t, out, "command=products page=optimization count=4")
}

func TestSlogLogger_DisabledLevelSkipped(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	log.Info(ContextWith(context.Background(), "command", "show"), "hidden")

	assert.Empty(t, buf.String())
}

func TestContextWith_DoesNotLeakBetweenBranches(t *testing.T) {
	base := ContextWith(context.Background(), "a", 1)
	left := ContextWith(base, "b", 2)
	right := ContextWith(base, "c", 3)

	assert.Equal(t, []any{"a", 1, "b", 2}, fieldsFrom(left))
	assert.Equal(t, []any{"a", 1, "c", 3}, fieldsFrom(right))
	assert.Equal(t, []any{"a", 1}, fieldsFrom(base))
}
