package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
)

// DefaultMaxSize is the default capacity of each of the undo and redo stacks.
const DefaultMaxSize = 50

// Manager owns the undo and redo stacks.
//
// Every Execute, Undo and Redo runs with the reentrancy guard held, so insertions made
// while replaying a command are not observed as new user actions.
type Manager struct {
	env       *Env
	undo      *stack
	redo      *stack
	maxSize   int
	executing bool
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithMaxSize sets the capacity of each stack. Values below 1 are ignored.
func WithMaxSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager for the given environment.
func NewManager(env *Env, opts ...Option) *Manager {
	m := &Manager{
		env:     env,
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = env.logger()
	}
	m.undo = newStack(m.maxSize)
	m.redo = newStack(m.maxSize)
	return m
}

// Executing reports whether a command is currently being executed or replayed.
func (m *Manager) Executing() bool {
	return m.executing
}

// MaxSize returns the stack capacity.
func (m *Manager) MaxSize() int {
	return m.maxSize
}

// ExecuteCommand executes cmd and pushes it on the undo stack, clearing the redo
// stack. A call made while another command is executing is dropped and reports false.
func (m *Manager) ExecuteCommand(ctx context.Context, cmd Command) bool {
	if cmd == nil {
		return false
	}
	if m.executing {
		m.logger.Debug("Reentrant command dropped", "command", Describe(cmd).Command)
		return false
	}

	err := m.guarded(func() error { return cmd.Execute(ctx) })
	m.pushUndo(ctx, cmd)
	m.redo.clear()
	m.emit(ctx, domain.EventExecute, cmd, err)
	return true
}

// Record pushes a command whose effect is already applied, clearing the redo stack.
func (m *Manager) Record(ctx context.Context, cmd Command) bool {
	if cmd == nil || m.executing {
		return false
	}
	m.pushUndo(ctx, cmd)
	m.redo.clear()
	m.emit(ctx, domain.EventRecord, cmd, nil)
	return true
}

// Undo reverts the most recent command. It is a no-op on an empty stack or while
// executing.
func (m *Manager) Undo(ctx context.Context) bool {
	if m.executing {
		return false
	}
	cmd, ok := m.undo.pop()
	if !ok {
		return false
	}

	err := m.guarded(func() error { return cmd.Undo(ctx) })
	m.pushRedo(ctx, cmd)
	m.settle()
	m.emit(ctx, domain.EventUndo, cmd, err)
	return true
}

// Redo re-executes the most recently undone command. It is a no-op on an empty stack
// or while executing.
func (m *Manager) Redo(ctx context.Context) bool {
	if m.executing {
		return false
	}
	cmd, ok := m.redo.pop()
	if !ok {
		return false
	}

	err := m.guarded(func() error { return cmd.Execute(ctx) })
	m.pushUndo(ctx, cmd)
	m.settle()
	m.emit(ctx, domain.EventRedo, cmd, err)
	return true
}

// Suppress runs fn with the reentrancy guard held. Tools that insert several
// entities directly use it so the auto-tracker does not fragment one user action.
func (m *Manager) Suppress(fn func()) {
	if m.executing {
		fn()
		return
	}
	_ = m.guarded(func() error {
		fn()
		return nil
	})
}

// State returns the current UI affordance state.
func (m *Manager) State() domain.HistoryState {
	return domain.HistoryState{
		CanUndo:   m.undo.len() > 0,
		CanRedo:   m.redo.len() > 0,
		UndoDepth: m.undo.len(),
		RedoDepth: m.redo.len(),
	}
}

// Entries lists the undo and redo stacks, oldest first.
func (m *Manager) Entries() (undo, redo []Entry) {
	return m.undo.entries(), m.redo.entries()
}

// Clear empties both stacks.
func (m *Manager) Clear(ctx context.Context) {
	m.undo.clear()
	m.redo.clear()
	m.notifyState(ctx)
}

func (m *Manager) guarded(fn func() error) error {
	m.executing = true
	defer func() { m.executing = false }()
	return fn()
}

func (m *Manager) pushUndo(ctx context.Context, cmd Command) {
	if evicted := m.undo.push(cmd); evicted != nil {
		m.evicted(ctx, evicted)
	}
}

func (m *Manager) pushRedo(ctx context.Context, cmd Command) {
	if evicted := m.redo.push(cmd); evicted != nil {
		m.evicted(ctx, evicted)
	}
}

func (m *Manager) evicted(ctx context.Context, cmd Command) {
	m.logger.Debug("History capacity reached, oldest entry evicted", "max_size", m.maxSize)
	m.fire(ctx, domain.EventEvict, cmd, nil)
}

// settle clears the selection and schedules a recompute pass after a replay, since
// geometry may have shifted.
func (m *Manager) settle() {
	if sel, ok := m.env.Scene.(ports.Selectable); ok {
		sel.ClearSelection()
	}
	if m.env.Coverage != nil {
		m.env.Coverage.ScheduleAll()
	}
	m.env.Scene.RequestRedraw()
}

func (m *Manager) emit(ctx context.Context, typ domain.EventType, cmd Command, err error) {
	if err != nil {
		m.logger.Error("Command partially applied", "event", typ, "command", Describe(cmd).Command, "err", err)
	}
	m.fire(ctx, typ, cmd, err)
	m.notifyState(ctx)
}

func (m *Manager) fire(ctx context.Context, typ domain.EventType, cmd Command, err error) {
	if m.env.Hooks.OnCommand == nil {
		return
	}
	entry := Describe(cmd)
	m.env.Hooks.OnCommand(ctx, &domain.CommandEvent{
		Timestamp: time.Now(),
		Type:      typ,
		Command:   entry.Command,
		Entities:  entry.Entities,
		Err:       err,
	})
}

func (m *Manager) notifyState(ctx context.Context) {
	state := m.State()
	m.logger.Debug("History changed", "undo_depth", state.UndoDepth, "redo_depth", state.RedoDepth)
	if m.env.Hooks.OnHistoryChange != nil {
		m.env.Hooks.OnHistoryChange(ctx, state)
	}
}
