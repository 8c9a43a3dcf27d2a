package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/internal/logging"
	"github.com/aretw0/planner/pkg/domain"
)

// Factory creates a new workspace for an ID.
type Factory func(id string) (*planner.Workspace, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates workspace access, ensuring one caller at a time per workspace.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu         sync.Mutex            // Global lock for the maps
	locks      map[string]*lockEntry // Map of active locks
	workspaces map[string]*planner.Workspace

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager. A nil factory creates plain workspaces.
func NewManager(factory Factory, opts ...Option) *Manager {
	if factory == nil {
		factory = func(id string) (*planner.Workspace, error) {
			return planner.New(id)
		}
	}
	m := &Manager{
		factory:    factory,
		locks:      make(map[string]*lockEntry),
		workspaces: make(map[string]*planner.Workspace),
		logger:     logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

func (m *Manager) lookup(id string) (*planner.Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.workspaces[id]
	return ws, ok
}

// Open returns the workspace for id, creating it if needed.
func (m *Manager) Open(ctx context.Context, id string) (*planner.Workspace, error) {
	var ws *planner.Workspace
	err := m.locked(id, func() error {
		if existing, ok := m.lookup(id); ok {
			ws = existing
			return nil
		}
		created, err := m.factory(id)
		if err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
		m.mu.Lock()
		m.workspaces[id] = created
		m.mu.Unlock()
		m.logger.Info("Workspace Created", "workspace", id)
		ws = created
		return nil
	})
	return ws, err
}

// WithLock executes fn while holding the lock for the workspace.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context, *planner.Workspace) error) error {
	return m.locked(id, func() error {
		ws, ok := m.lookup(id)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
		}
		return fn(ctx, ws)
	})
}

// Delete closes and forgets the workspace.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.locked(id, func() error {
		m.mu.Lock()
		ws, ok := m.workspaces[id]
		delete(m.workspaces, id)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
		}
		ws.Close()
		m.logger.Info("Workspace Closed", "workspace", id)
		return nil
	})
}

// List returns the IDs of the open workspaces, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.workspaces))
	for id := range m.workspaces {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *Manager) locked(id string, fn func() error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn()
}
