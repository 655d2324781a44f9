package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepviz/internal/spec"
	"stepviz/internal/steps"
)

// Session carries one viewer's navigation state over a built step
// sequence. It lives while its specification is active; loading a
// different specification means opening a new session.
type Session struct {
	ID     string
	SpecID string
	player *steps.Player
}

// SessionManager owns the active sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	builder  *steps.Builder
	log      *zap.Logger
}

func NewSessionManager(builder *steps.Builder, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		builder:  builder,
		log:      logger,
	}
}

// Open builds the step sequence for a specification and returns a new
// session positioned on the first step.
func (m *SessionManager) Open(s *spec.Specification, interval time.Duration) (*Session, error) {
	built := m.builder.Build(s)
	if len(built) == 0 {
		return nil, fmt.Errorf("specification %s derives no steps", s.ID)
	}

	nav := steps.NewNavigator(built)
	player := steps.NewPlayer(nav, nil)
	if interval > 0 {
		player.SetSpeed(interval)
	}

	session := &Session{
		ID:     uuid.NewString(),
		SpecID: s.ID,
		player: player,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.log.Info("session opened",
		zap.String("session", session.ID),
		zap.String("spec", s.ID),
		zap.Int("steps", len(built)))
	return session, nil
}

// Get returns a session by id.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close stops a session's autoplay and forgets it.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		session.player.Stop()
	}
}

// snapshot is the session view returned to the UI after every
// navigation call.
type snapshot struct {
	SessionID string     `json:"sessionId"`
	SpecID    string     `json:"specId"`
	Index     int        `json:"index"`
	Total     int        `json:"total"`
	Playing   bool       `json:"playing"`
	Step      steps.Step `json:"step"`
}

func (s *Session) snapshot() snapshot {
	var snap snapshot
	s.player.Do(func(nav *steps.Navigator) {
		step, _ := nav.Current()
		snap = snapshot{
			SessionID: s.ID,
			SpecID:    s.SpecID,
			Index:     nav.Index(),
			Total:     nav.Len(),
			Step:      step,
		}
	})
	snap.Playing = s.player.Playing()
	return snap
}
