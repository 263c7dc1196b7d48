package game

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/ecclesia-strategy/config"
	"github.com/user/ecclesia-strategy/internal/types"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live sessions keyed by ID. Sessions carry their own
// locks; the manager's lock only guards the map.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deck     *types.GameDeck
	cfg      config.GameConfig
	logger   *zap.Logger
}

// NewManager creates a session manager for the given deck.
func NewManager(deck *types.GameDeck, cfg config.GameConfig) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		deck:     deck,
		cfg:      cfg,
		logger:   zap.NewNop(), // Will be set by the server
	}
}

// SetLogger sets the logger used by the manager and future sessions.
func (m *Manager) SetLogger(logger *zap.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// CreateSession starts a new play-through and returns it.
func (m *Manager) CreateSession(opts types.SessionConfiguration) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	session := NewSession(id, m.deck, m.cfg, opts, m.logger)
	m.sessions[id] = session
	return session
}

// GetSession retrieves a session by ID.
func (m *Manager) GetSession(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// RemoveSession cancels a session's timers and drops it from the manager.
func (m *Manager) RemoveSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}

	session.mu.Lock()
	session.cancelTimersLocked()
	session.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// SessionIDs returns the IDs of all live sessions in stable order.
func (m *Manager) SessionIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown cancels the timers of every live session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range m.sessions {
		session.mu.Lock()
		session.cancelTimersLocked()
		session.mu.Unlock()
	}
}
