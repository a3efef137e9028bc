package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/metrics"
	"github.com/playmatatu/plinko/internal/models"
)

// Manager owns every live session of this instance.
type Manager struct {
	board    *game.Board
	settings Settings
	sinks    sinks

	mu       sync.RWMutex
	sessions map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a manager whose sessions run until Shutdown. Any of hub,
// recorder or publisher may be nil.
func NewManager(board *game.Board, st Settings, hub Broadcaster, recorder Recorder, publisher Publisher) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		board:    board,
		settings: st,
		sinks:    sinks{hub: hub, recorder: recorder, publisher: publisher},
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Board is the layout shared by all sessions.
func (m *Manager) Board() *game.Board {
	return m.board
}

// Settings returns the per-session settings.
func (m *Manager) Settings() Settings {
	return m.settings
}

// Create starts a new session loop.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.board, m.settings, m.sinks)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	go s.run(m.ctx)
	metrics.ActiveSessions.Inc()

	m.sinks.startSession(models.PlaySession{
		ID:        s.ID,
		BoardRows: m.board.Config().Rows,
		ZoneCount: len(m.board.Zones()),
		CreatedAt: s.CreatedAt,
	})
	log.Printf("[SESSION] Created %s", s.ID)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops a session and releases its subscribers.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	m.finish(s)
	return nil
}

func (m *Manager) finish(s *Session) {
	s.close()
	s.syncBallGauge(0)
	metrics.ActiveSessions.Dec()

	m.sinks.broadcast(s.ID, Message{Type: MsgClosed})
	m.sinks.closeRoom(s.ID)
	m.sinks.ended(s.ID)
	log.Printf("[SESSION] Closed %s", s.ID)
}

// ExpireIdle closes sessions with no command since before cutoff and returns
// their IDs.
func (m *Manager) ExpireIdle(cutoff time.Time) []string {
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, s := range idle {
		m.finish(s)
		ids = append(ids, s.ID)
	}
	return ids
}

// StartExpiryWorker sweeps idle sessions every interval until ctx is done.
func (m *Manager) StartExpiryWorker(ctx context.Context, idleTimeout, interval time.Duration) {
	if idleTimeout <= 0 || interval <= 0 {
		log.Println("[SESSION] Idle expiry disabled")
		return
	}

	log.Printf("[SESSION] Idle expiry worker started (timeout=%s)", idleTimeout)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[SESSION] Idle expiry worker stopping")
				return
			case now := <-ticker.C:
				if ids := m.ExpireIdle(now.Add(-idleTimeout)); len(ids) > 0 {
					log.Printf("[SESSION] Expired %d idle sessions", len(ids))
				}
			}
		}
	}()
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		m.finish(s)
	}
	m.cancel()
}
