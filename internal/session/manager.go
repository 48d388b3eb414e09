package session

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

const DefaultMaxSessions = 1000

// Manager holds sessions in memory. The least recently used session is
// evicted once MaxSessions is reached.
type Manager struct {
	sessions *lru.Cache[string, *Session]
	logger   logger.Logger
}

func NewManager(maxSessions int, log logger.Logger) (*Manager, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	log = log.Named("sessions")

	cache, err := lru.NewWithEvict[string, *Session](maxSessions, func(id string, _ *Session) {
		log.Debug("Session evicted", logger.String("session_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &Manager{
		sessions: cache,
		logger:   log,
	}, nil
}

func (m *Manager) Create() *Session {
	s := New(uuid.NewString())
	m.sessions.Add(s.ID(), s)
	m.logger.Info("Session created", logger.String("session_id", s.ID()))
	return s
}

// Get returns the session and marks it recently used.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	if !m.sessions.Remove(id) {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	m.logger.Info("Session deleted", logger.String("session_id", id))
	return nil
}

func (m *Manager) Len() int {
	return m.sessions.Len()
}
