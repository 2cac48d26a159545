package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxSessions = 10000
	DefaultIdleTTL     = 24 * time.Hour
)

type session struct {
	state   State
	touched time.Time
}

// Sessions keeps one cart per session id in process memory. Carts idle longer
// than the idle TTL are dropped, and once maxSessions carts are held the least
// recently used one makes room for a new session.
type Sessions struct {
	mu          sync.Mutex
	carts       map[string]*session
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

type Option func(*Sessions)

// WithMaxSessions bounds the number of carts held. Non-positive keeps the default.
func WithMaxSessions(n int) Option {
	return func(s *Sessions) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithIdleTTL sets how long an untouched cart is kept. Non-positive keeps the default.
func WithIdleTTL(d time.Duration) Option {
	return func(s *Sessions) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

func NewSessions(opts ...Option) *Sessions {
	s := &Sessions{
		carts:       make(map[string]*session),
		maxSessions: DefaultMaxSessions,
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Snapshot returns the current cart of session id. Unknown or expired ids get an empty cart.
func (s *Sessions) Snapshot(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.live(id, s.now()); ok {
		return cur.state
	}
	return State{}
}

// Dispatch applies a to the cart of session id and returns the new snapshot.
func (s *Sessions) Dispatch(id string, a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var prev State
	cur, ok := s.live(id, now)
	if ok {
		prev = cur.state
	}

	next := Reduce(prev, a)
	switch {
	case next.Count() == 0:
		delete(s.carts, id)
	case ok:
		cur.state, cur.touched = next, now
	default:
		s.makeRoom(now)
		s.carts[id] = &session{state: next, touched: now}
	}
	return next
}

// Len is the number of sessions holding a non-empty cart.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Prune drops idle carts and returns how many were removed.
func (s *Sessions) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prune(s.now())
}

func (s *Sessions) live(id string, now time.Time) (*session, bool) {
	cur, ok := s.carts[id]
	if !ok {
		return nil, false
	}
	if now.Sub(cur.touched) > s.idleTTL {
		delete(s.carts, id)
		return nil, false
	}
	return cur, true
}

func (s *Sessions) prune(now time.Time) int {
	n := 0
	for id, cur := range s.carts {
		if now.Sub(cur.touched) > s.idleTTL {
			delete(s.carts, id)
			n++
		}
	}
	return n
}

// makeRoom must be called with mu held.
func (s *Sessions) makeRoom(now time.Time) {
	if len(s.carts) < s.maxSessions {
		return
	}
	if s.prune(now) > 0 && len(s.carts) < s.maxSessions {
		return
	}
	var (
		oldestID string
		oldest   time.Time
	)
	for id, cur := range s.carts {
		if oldestID == "" || cur.touched.Before(oldest) {
			oldestID, oldest = id, cur.touched
		}
	}
	delete(s.carts, oldestID)
}
