// Package query implements the debounced search box: the raw text follows
// every keystroke, the committed text only changes once typing pauses for
// the quiet period.
package query

import (
	"sync"
	"time"
)

// DefaultQuiet is the pause after the last edit before a value is committed.
const DefaultQuiet = time.Second

// State is the buffer's scheduling state.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Buffer holds the raw and committed query text. It is safe for concurrent
// use; onCommit runs without the buffer's lock held, on the clock's callback
// goroutine or on the caller of Flush.
type Buffer struct {
	mu       sync.Mutex
	clock    Clock
	quiet    time.Duration
	onCommit func(string)

	raw       string
	committed string
	timer     Timer
	deadline  time.Time
	// gen identifies the latest scheduled commit; older timer callbacks
	// that were already running when Stop was called see a stale gen.
	gen    uint64
	closed bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(b *Buffer) { b.clock = c }
}

// NewBuffer returns an idle buffer that calls onCommit (which may be nil)
// each time a value is committed. A non-positive quiet commits immediately.
func NewBuffer(quiet time.Duration, onCommit func(string), opts ...Option) *Buffer {
	b := &Buffer{
		clock:    SystemClock(),
		quiet:    quiet,
		onCommit: onCommit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetRaw records v as the raw text and restarts the quiet period. The empty
// string is an ordinary value. After Close only the raw text changes.
func (b *Buffer) SetRaw(v string) {
	b.mu.Lock()
	b.raw = v
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.stopLocked()

	if b.quiet <= 0 {
		b.committed = v
		cb := b.onCommit
		b.mu.Unlock()
		if cb != nil {
			cb(v)
		}
		return
	}

	b.gen++
	gen := b.gen
	b.deadline = b.clock.Now().Add(b.quiet)
	b.timer = b.clock.AfterFunc(b.quiet, func() { b.fire(gen) })
	b.mu.Unlock()
}

func (b *Buffer) fire(gen uint64) {
	b.mu.Lock()
	if b.closed || gen != b.gen || b.timer == nil {
		b.mu.Unlock()
		return
	}
	v := b.commitLocked()
	cb := b.onCommit
	b.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

// Flush commits a pending value now. It reports whether anything was
// pending.
func (b *Buffer) Flush() bool {
	b.mu.Lock()
	if b.closed || b.timer == nil {
		b.mu.Unlock()
		return false
	}
	b.stopLocked()
	v := b.commitLocked()
	cb := b.onCommit
	b.mu.Unlock()

	if cb != nil {
		cb(v)
	}
	return true
}

// Close cancels any pending commit. No commit happens afterwards.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.closed = true
}

func (b *Buffer) commitLocked() string {
	b.committed = b.raw
	b.timer = nil
	b.deadline = time.Time{}
	return b.committed
}

func (b *Buffer) stopLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
		b.deadline = time.Time{}
	}
	b.gen++
}

// Raw returns the text as last typed.
func (b *Buffer) Raw() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw
}

// Committed returns the text the filter pipeline should use.
func (b *Buffer) Committed() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed
}

// State returns Pending and the commit deadline while a commit is scheduled,
// Idle and the zero time otherwise.
func (b *Buffer) State() (State, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer == nil {
		return Idle, time.Time{}
	}
	return Pending, b.deadline
}
