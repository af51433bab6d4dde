package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/motifscope/pkg/view"
)

// DefaultSessionTTL is how long an idle browser session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Sentinel errors for session lookups.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// session is one browser's linked views. mu serializes every event of the
// session, including dwell timers and fetches that complete off a request.
// expiresAt is guarded by the registry lock.
type session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	expiresAt time.Time
	view      *view.Session
	cancel    context.CancelFunc
}

// post runs fn under the session lock. It is the event loop of the view
// session.
func (s *session) post(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// close stops pending dwell timers and in-flight fetches.
func (s *session) close() {
	s.post(s.view.Close)
	s.cancel()
}

// registry stores sessions in memory with sliding expiration.
type registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func newRegistry(ttl time.Duration) *registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &registry{ttl: ttl, now: time.Now, sessions: make(map[string]*session)}
}

// create registers a new session. build receives the session context and
// the session's event loop.
func (r *registry) create(parent context.Context, build func(ctx context.Context, post func(func())) *view.Session) *session {
	ctx, cancel := context.WithCancel(parent)
	now := r.now()
	s := &session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		expiresAt: now.Add(r.ttl),
		cancel:    cancel,
	}
	s.view = build(ctx, s.post)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// get returns the session and extends its lifetime. Expired sessions are
// removed and reported as [ErrExpired].
func (r *registry) get(id string) (*session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	now := r.now()
	if now.After(s.expiresAt) {
		delete(r.sessions, id)
		r.mu.Unlock()
		s.close()
		return nil, ErrExpired
	}
	s.expiresAt = now.Add(r.ttl)
	r.mu.Unlock()
	return s, nil
}

// delete removes and closes the session.
func (r *registry) delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.close()
	}
	return ok
}

// cleanup removes expired sessions and returns how many it removed.
func (r *registry) cleanup() int {
	now := r.now()
	var expired []*session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.After(s.expiresAt) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

// closeAll removes every session.
func (r *registry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// expiry returns when s expires.
func (r *registry) expiry(s *session) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return s.expiresAt
}
