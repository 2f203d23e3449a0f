package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/airsat/internal/core"
)

// sessionStore keeps each browser's last valid FilterSpec so that an invalid
// range can be answered with the previous view.
// Sessions idle for longer than ttl are swept.
type sessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]*session

	stop     chan struct{}
	stopOnce sync.Once
}

type session struct {
	spec     core.FilterSpec
	lastSeen time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	s := &sessionStore{
		ttl:     ttl,
		entries: make(map[uuid.UUID]*session),
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// LastValid returns the last valid spec stored for id.
func (s *sessionStore) LastValid(id uuid.UUID) (core.FilterSpec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return core.FilterSpec{}, false
	}
	e.lastSeen = time.Now()
	return e.spec, true
}

// Remember stores spec as the last valid spec for id.
func (s *sessionStore) Remember(id uuid.UUID, spec core.FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = &session{spec: spec, lastSeen: time.Now()}
}

// Len returns the number of live sessions.
func (s *sessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep removes sessions idle since before now - ttl.
func (s *sessionStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) janitor() {
	interval := max(s.ttl/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// Close stops the janitor goroutine.
func (s *sessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// sessionID returns the request's session ID, issuing a new cookie when the
// request has none or carries a malformed one.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id
		}
	}

	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
