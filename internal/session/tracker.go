package session

import (
	"errors"
	"sync"
	"time"
)

// DefaultTTL is how long a pending action stays valid after it is set.
const DefaultTTL = 5 * time.Minute

// ErrUnknownAction is returned when a pending action other than fund or withdraw is set.
var ErrUnknownAction = errors.New("unknown pending action")

// Action is the operation a user started without supplying an amount.
type Action string

const (
	ActionFund     Action = "fund"
	ActionWithdraw Action = "withdraw"
)

// Valid reports whether a is one of the supported actions.
func (a Action) Valid() bool {
	return a == ActionFund || a == ActionWithdraw
}

// Session records that the next free-text message from UserID is the amount
// for PendingAction.
type Session struct {
	UserID        int64
	PendingAction Action
	Timestamp     time.Time
}

// Tracker holds at most one session per user. Expired sessions are reclaimed
// lazily when read; there is no background sweep.
type Tracker struct {
	mu       sync.Mutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithTTL sets the expiry threshold. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker builds an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		sessions: make(map[int64]Session),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetPendingAction creates or overwrites the user's session.
func (t *Tracker) SetPendingAction(userID int64, action Action) error {
	if !action.Valid() {
		return ErrUnknownAction
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[userID] = Session{UserID: userID, PendingAction: action, Timestamp: t.now()}
	return nil
}

// PendingAction returns the user's pending action. A session older than the
// TTL is deleted and reported as absent.
func (t *Tracker) PendingAction(userID int64) (Action, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok {
		return "", false
	}
	if t.now().Sub(s.Timestamp) > t.ttl {
		delete(t.sessions, userID)
		return "", false
	}
	return s.PendingAction, true
}

// ClearPendingAction removes the user's session if there is one.
func (t *Tracker) ClearPendingAction(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, userID)
}

// TTL reports the configured expiry threshold.
func (t *Tracker) TTL() time.Duration {
	return t.ttl
}
