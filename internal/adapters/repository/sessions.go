package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/squadkit/internal/domain/squad"
	"github.com/okian/squadkit/pkg/metrics"
)

// DefaultManagerName is used when a session is created without a name.
const DefaultManagerName = "Manager"

// Default session housekeeping.
const (
	defaultSessionTTL    = 24 * time.Hour
	defaultSweepInterval = 10 * time.Minute
)

// Session is one manager's squad. Its Squad must only be touched inside
// SessionStore.With.
type Session struct {
	ID       string
	Manager  string
	Created  time.Time
	LastUsed time.Time
	Squad    *squad.Store

	mu sync.Mutex
}

// SessionStore keeps sessions in memory, each guarded by its own mutex so
// mutations on one squad never wait on another.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limits   squad.Limits

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewSessionStore constructs a session store whose squads use limits.
func NewSessionStore(limits squad.Limits, opts ...Option) *SessionStore {
	s := &SessionStore{
		sessions:      make(map[string]*Session),
		limits:        limits,
		ttl:           defaultSessionTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new session with an empty squad.
func (s *SessionStore) Create(_ context.Context, manager string) *Session {
	manager = strings.TrimSpace(manager)
	if manager == "" {
		manager = DefaultManagerName
	}
	now := s.now()
	sess := &Session{
		ID:       uuid.NewString(),
		Manager:  manager,
		Created:  now,
		LastUsed: now,
		Squad:    squad.NewStore(s.limits),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	return sess
}

// With runs fn while holding the session's lock. The session's LastUsed
// is refreshed. fn's error is returned unchanged.
func (s *SessionStore) With(_ context.Context, id string, fn func(*Session) error) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.LastUsed = s.now()
	return fn(sess)
}

// Delete removes the session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.UpdateActiveSessions(n)
	return nil
}

// Count returns the number of live sessions.
func (s *SessionStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle since before now minus the TTL and returns
// how many were removed.
func (s *SessionStore) Sweep(_ context.Context) int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.RLock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	removed := 0
	for _, sess := range all {
		sess.mu.Lock()
		idle := sess.LastUsed.Before(cutoff)
		sess.mu.Unlock()
		if !idle {
			continue
		}
		s.mu.Lock()
		if cur, ok := s.sessions[sess.ID]; ok && cur == sess {
			delete(s.sessions, sess.ID)
			removed++
		}
		s.mu.Unlock()
	}

	metrics.UpdateActiveSessions(s.Count(context.Background()))
	return removed
}

// StartJanitor runs Sweep every sweep interval until ctx is done or Close is called.
func (s *SessionStore) StartJanitor(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Close stops the janitor.
func (s *SessionStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *SessionStore) lookup(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}
