package mergeapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"scene-merge/core/merge"
)

// Session holds a running merge operation and its action index.
type Session struct {
	// ID is the session identifier handed to clients.
	ID string
	// BaseName, SourceName and TargetName are the snapshot names involved.
	BaseName   string
	SourceName string
	TargetName string
	// Operation is the reconciled merge operation.
	Operation *merge.Operation
	// CreatedAt is the session creation time.
	CreatedAt time.Time

	actions map[string]merge.Action
}

func newSession(baseName, sourceName, targetName string, op *merge.Operation) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		BaseName:   baseName,
		SourceName: sourceName,
		TargetName: targetName,
		Operation:  op,
		CreatedAt:  time.Now(),
	}
	s.actions = make(map[string]merge.Action, len(op.Actions()))
	for _, a := range op.Actions() {
		s.actions[a.ID()] = a
	}
	return s
}

// Action looks up an action by its identifier.
func (s *Session) Action(actionID string) (merge.Action, bool) {
	a, ok := s.actions[actionID]
	return a, ok
}

// SessionStore is an in-memory session registry.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty registry.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Put registers a session.
func (st *SessionStore) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Get returns the session with the given ID.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown merge session: %s", id)
	}
	return s, nil
}

// Delete removes a session from the registry.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
