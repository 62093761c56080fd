package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// RedirectToLogin sends the user to the login page.
	RedirectToLogin Decision = iota
	// Allow renders the protected page.
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect-to-login"
}

// State classifies the stored credential.
type State int

const (
	Absent State = iota
	Valid
	Invalid
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "absent"
	}
}

// Guard decides whether a protected page may be shown.
type Guard struct {
	session *Session
	now     func() time.Time
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

func NewGuard(s *Session, opts ...GuardOption) *Guard {
	g := &Guard{session: s, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Expiry decodes the exp claim from the payload segment of token. The
// signature and header are not checked. Wrong segment count, bad base64, a
// non-JSON payload and a missing exp all yield ErrMalformed.
func Expiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %d segments", ErrMalformed, len(parts))
	}

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", ErrMalformed)
	}
	return exp.Time, nil
}

// Inspect classifies token at now. The returned error is ErrExpired or
// ErrMalformed for Invalid tokens.
func Inspect(token string, now time.Time) (State, error) {
	if token == "" {
		return Absent, nil
	}
	exp, err := Expiry(token)
	if err != nil {
		return Invalid, err
	}
	if exp.UnixMilli() < now.UnixMilli() {
		return Invalid, ErrExpired
	}
	return Valid, nil
}

// Check runs the guard. Invalid credentials are cleared from the store
// before RedirectToLogin is returned; an absent or valid credential leaves
// the store untouched. Store failures are returned with RedirectToLogin.
func (g *Guard) Check(ctx context.Context) (Decision, error) {
	token, err := g.session.Token(ctx)
	if err != nil {
		return RedirectToLogin, fmt.Errorf("read credential: %w", err)
	}

	state, reason := Inspect(token, g.now())
	switch state {
	case Valid:
		return Allow, nil
	case Invalid:
		if err := g.session.Clear(ctx); err != nil {
			return RedirectToLogin, fmt.Errorf("clear credential: %w", errors.Join(reason, err))
		}
		return RedirectToLogin, nil
	default:
		return RedirectToLogin, nil
	}
}
