// Package session owns per-session ordered turn history. It is the only
// place history is mutated.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/partdesk/backend/internal/model/chat"
)

// Session holds one conversation's ordered turn history. Requests for the
// same session serialize on Lock; requests for different sessions never
// contend. The lock guards the read-history → decide → append sequence as
// one unit, so "most recent turn" semantics stay correct under concurrency.
type Session struct {
	id string

	mu    sync.Mutex
	turns []chat.Turn
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Lock takes the session's exclusive path. Callers must hold it around the
// full read-decide-append sequence for a request.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's exclusive path.
func (s *Session) Unlock() { s.mu.Unlock() }

// Turns returns a copy of the history. Callers must hold the lock when the
// snapshot has to stay consistent with a subsequent append.
func (s *Session) Turns() []chat.Turn {
	copied := make([]chat.Turn, len(s.turns))
	copy(copied, s.turns)
	return copied
}

// Append commits turns in order as one unit. A user turn and its assistant
// reply are always passed together so a failed request can never leave a
// dangling half of the exchange. Caller must hold the lock.
func (s *Session) Append(turns ...chat.Turn) {
	for _, t := range turns {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.turns = append(s.turns, t)
	}
}

// Reset clears the history while keeping the session identity usable.
// Caller must hold the lock.
func (s *Session) Reset() {
	s.turns = nil
}

// Store maps session ids to sessions. Unknown ids are lazily created empty,
// never rejected; sessions live for the process lifetime.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it on first reference.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = &Session{id: id}
	s.sessions[id] = sess
	return sess
}

// Append commits turns to the session's history under its exclusive path.
func (s *Store) Append(id string, turns ...chat.Turn) {
	sess := s.GetOrCreate(id)
	sess.Lock()
	defer sess.Unlock()
	sess.Append(turns...)
}

// Reset clears a session's history, keeping the identity.
func (s *Store) Reset(id string) {
	sess := s.GetOrCreate(id)
	sess.Lock()
	defer sess.Unlock()
	sess.Reset()
}
