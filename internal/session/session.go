// Package session ties the engine and the journal together: a session
// owns the live state of one tracked game, applies submitted actions,
// and journals every accepted one so the game can be resumed or
// audited later.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/splay/internal/action"
	"github.com/roach88/splay/internal/engine"
	"github.com/roach88/splay/internal/state"
	"github.com/roach88/splay/internal/store"
)

// Manager creates, resumes, and tracks sessions.
type Manager struct {
	engine *engine.Engine
	store  *store.Store
	tokens TokenGenerator
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithTokenGenerator overrides the game id generator.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(m *Manager) { m.tokens = gen }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager builds a Manager over an engine and a journal store.
func NewManager(e *engine.Engine, s *store.Store, opts ...Option) *Manager {
	m := &Manager{
		engine:   e,
		store:    s,
		tokens:   UUIDv7Generator{},
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create registers a new game from its initial state and returns the
// live session. An empty GameID on the state is filled from the token
// generator.
func (m *Manager) Create(ctx context.Context, initial *state.GameState) (*Session, error) {
	if initial.GameID == "" {
		initial.GameID = m.tokens.Generate()
	}
	if err := m.store.CreateGame(ctx, initial.GameID, m.engine.Spec().GameID, initial); err != nil {
		return nil, err
	}

	sess := &Session{
		manager: m,
		gameID:  initial.GameID,
		current: initial,
		nextSeq: 0,
	}
	m.mu.Lock()
	m.sessions[initial.GameID] = sess
	m.mu.Unlock()

	m.logger.Info("session created", "game_id", initial.GameID)
	return sess, nil
}

// Resume rebuilds a session from the journal, verifying every entry's
// fingerprint on the way. A diverged journal is refused.
func (m *Manager) Resume(ctx context.Context, gameID string) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[gameID]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	st, report, err := store.Replay(ctx, m.store, m.engine, gameID)
	if err != nil {
		return nil, err
	}
	if report.FirstDivergence >= 0 {
		return nil, fmt.Errorf("resume %s: journal diverges at seq %d", gameID, report.FirstDivergence)
	}

	sess := &Session{
		manager: m,
		gameID:  gameID,
		current: st,
		nextSeq: int64(report.Verified),
	}
	m.mu.Lock()
	m.sessions[gameID] = sess
	m.mu.Unlock()

	m.logger.Info("session resumed", "game_id", gameID, "actions_replayed", report.Verified)
	return sess, nil
}

// Get returns a tracked session, or nil when the game is not loaded.
func (m *Manager) Get(gameID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[gameID]
}

// Session is the live handle on one game. All methods are safe for
// concurrent use; Submit serializes writers.
type Session struct {
	manager *Manager
	gameID  string

	mu      sync.Mutex
	current *state.GameState
	nextSeq int64
}

// GameID returns the session's game id.
func (s *Session) GameID() string { return s.gameID }

// State returns the current state. Callers must treat it as read-only;
// every mutation goes through Submit.
func (s *Session) State() *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Submit applies one action. On success the new state is journaled and
// becomes current; on rejection nothing changes and nothing is written.
func (s *Session) Submit(ctx context.Context, act action.Action) (*state.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.manager.engine.Apply(s.current, act)
	if err != nil {
		return nil, err
	}

	if _, err := s.manager.store.AppendAction(ctx, store.JournalEntry{
		GameID:      s.gameID,
		Seq:         s.nextSeq,
		Action:      act,
		Fingerprint: state.Fingerprint(next),
	}); err != nil {
		return nil, fmt.Errorf("journal %s: %w", s.gameID, err)
	}

	s.current = next
	s.nextSeq++
	return next, nil
}

// LegalActions enumerates the actions the current state accepts.
func (s *Session) LegalActions() []action.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.engine.LegalActions(s.current)
}
