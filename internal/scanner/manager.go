package scanner

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/metrics"
)

// Manager owns one camera source and at most one session on it.
type Manager struct {
	source      Source
	sampler     *Sampler
	resultLimit int
	logger      zerolog.Logger

	startMu sync.Mutex // serializes Start and Shutdown

	mu      sync.Mutex
	current *Session
	closed  bool
}

func NewManager(source Source, sampler *Sampler, resultLimit int, logger zerolog.Logger) *Manager {
	return &Manager{
		source:      source,
		sampler:     sampler,
		resultLimit: resultLimit,
		logger:      logger.With().Str("component", "scanner").Logger(),
	}
}

func (m *Manager) Source() Source {
	return m.source
}

// Current returns the running session, if any.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Start stops any running session, waits for its camera to be released and
// opens a new one. On ErrCameraUnavailable no session is left running.
func (m *Manager) Start(ctx context.Context, eventID string, facing Facing, handle ResultFunc) (*Session, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrSessionClosed
	}
	prev := m.current
	m.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}

	s := newSession(eventID, m.source, m.sampler, handle, m.resultLimit, m.logger)
	s.onStop = m.detach

	s.mu.Lock()
	err := s.startLoop(ctx, facing)
	s.mu.Unlock()
	if err != nil {
		s.baseCancel()
		m.logger.Warn().Err(err).Str("event_id", eventID).Msg("failed to start scanner session")
		return nil, err
	}

	metrics.ActiveSessions.Inc()
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	s.logger.Info().Msg("scanner session started")
	return s, nil
}

func (m *Manager) detach(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == s {
		m.current = nil
	}
}

// Shutdown stops the running session and refuses new ones.
func (m *Manager) Shutdown() {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	m.closed = true
	cur := m.current
	m.mu.Unlock()
	if cur != nil {
		cur.Stop()
	}
}
