// internal/session/store.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fitness-coach/internal/models"
	"fitness-coach/pkg/logger"
)

// Store keeps live sessions in process memory, keyed by session id. Access
// to a single session must be serialized through Lock/Unlock; distinct
// sessions are fully independent. Idle sessions are evicted after ttl.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	locks    map[string]*sync.Mutex
	ttl      time.Duration
	logger   *logger.Logger
}

func NewStore(ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
		locks:    make(map[string]*sync.Mutex),
		ttl:      ttl,
		logger:   log,
	}
}

// GetOrCreate resolves id to a live session, minting a fresh one when the
// id is empty, unknown, or not a well-formed UUID. Malformed ids are
// silently repaired, never surfaced as an error. The second return value
// reports whether a new session was created.
func (s *Store) GetOrCreate(id string) (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, exists := s.sessions[id]; exists {
			return sess, false
		}
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	now := time.Now()
	sess := &models.Session{
		ID:        id,
		Stage:     models.StageGoal,
		Profile:   models.Profile{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[id] = sess
	return sess, true
}

// Save touches the session's update time and stores it.
func (s *Store) Save(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now()
	s.sessions[sess.ID] = sess
}

// Lock serializes turn processing for one session id and returns the
// acquired mutex; the caller unlocks it directly. Two overlapping requests
// for the same id would otherwise race the stage transition. Returning the
// mutex keeps release correct even if the janitor evicts the map entry
// while the caller holds it.
func (s *Store) Lock(id string) *sync.Mutex {
	for {
		s.mu.Lock()
		l, exists := s.locks[id]
		if !exists {
			l = &sync.Mutex{}
			s.locks[id] = l
		}
		s.mu.Unlock()

		l.Lock()

		s.mu.RLock()
		current := s.locks[id]
		s.mu.RUnlock()
		if current == l {
			return l
		}
		// The entry was evicted between fetch and acquire; release the
		// orphan and queue on the live one.
		l.Unlock()
	}
}

// StartJanitor evicts idle sessions on the given interval until ctx ends.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted := s.evictIdle(time.Now())
				if evicted > 0 {
					s.logger.Infow("Evicted idle sessions", "count", evicted)
				}
			}
		}
	}()
}

func (s *Store) evictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	// Drop lock entries only for ids with no live session and no current
	// holder; a held mutex stays in the map so queued waiters are released
	// normally and swept on a later pass.
	for id, l := range s.locks {
		if _, live := s.sessions[id]; live {
			continue
		}
		if l.TryLock() {
			delete(s.locks, id)
			l.Unlock()
		}
	}
	return evicted
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
