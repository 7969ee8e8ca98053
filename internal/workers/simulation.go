// Package workers implements the runtime worker mesh: Simulation is the
// sole mutator of a session's GameState, Persistence reacts to what it
// publishes on the event bus, and Prover polls the batch repository.
// Each worker runs as a single goroutine; Simulation drains its own
// command channel — a cooperative single-threaded task model in place of
// locking GameState for concurrent access.
package workers

import (
	"github.com/ocx/roguevm/internal/batch"
	"github.com/ocx/roguevm/internal/engine"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/metrics"
	"github.com/ocx/roguevm/internal/oracle"
	"github.com/ocx/roguevm/internal/scheduler"
	"github.com/ocx/roguevm/internal/workers/bus"
)

// Simulation owns one session's live GameState. Every access goes
// through its command channel so the state is never touched from two
// goroutines at once.
type Simulation struct {
	sessionID string
	state     *gstate.GameState
	env       oracle.Env
	engine    *engine.Engine
	scheduler *scheduler.Scheduler
	bus       *bus.Bus
	metrics   *metrics.Metrics
	cmds      chan func()
}

// NewSimulation starts the worker goroutine and returns a handle to it.
// m may be nil, in which case metrics recording is skipped.
func NewSimulation(sessionID string, state *gstate.GameState, env oracle.Env, eng *engine.Engine, sch *scheduler.Scheduler, b *bus.Bus, m *metrics.Metrics) *Simulation {
	w := &Simulation{
		sessionID: sessionID,
		state:     state,
		env:       env,
		engine:    eng,
		scheduler: sch,
		bus:       b,
		metrics:   m,
		cmds:      make(chan func(), 64),
	}
	go w.run()
	return w
}

func (w *Simulation) run() {
	for cmd := range w.cmds {
		cmd()
	}
}

// Stop drains and closes the command channel. Callers must not submit
// further commands afterward.
func (w *Simulation) Stop() { close(w.cmds) }

func (w *Simulation) submit(fn func()) {
	done := make(chan struct{})
	w.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}

// ExecuteAction runs a single top-level action through the engine and
// publishes ActionExecuted/ActionFailed. Nonce advances exactly once per
// successful call, and not at all on failure — hook-spawned system actions nested inside the same Execute call
// share this nonce rather than consuming their own, since only top-level
// actions are addressable entries in the session's action log.
func (w *Simulation) ExecuteAction(a engine.Action) (*gstate.StateDelta, error) {
	var delta *gstate.StateDelta
	var err error
	w.submit(func() {
		before := w.state.Turn.Nonce
		delta, err = w.engine.Execute(w.state, w.env, a)
		if err != nil {
			if w.metrics != nil {
				w.metrics.ActionsFailed.WithLabelValues(w.sessionID, string(a.Kind)).Inc()
			}
			w.bus.Publish(&bus.Event{Kind: bus.KindActionFailed, SessionID: w.sessionID, Nonce: before, Actor: a.Actor, Err: err})
			return
		}
		w.state.Turn.Nonce++
		after := w.state.Turn.Nonce
		delta.TurnPatch.NonceBefore = &before
		delta.TurnPatch.NonceAfter = &after
		if w.metrics != nil {
			w.metrics.ActionsExecuted.WithLabelValues(w.sessionID, string(a.Kind)).Inc()
		}
		w.bus.Publish(&bus.Event{Kind: bus.KindActionExecuted, SessionID: w.sessionID, Nonce: after, Actor: a.Actor, Delta: delta})
	})
	return delta, err
}

// PrepareNextTurn advances the scheduler and publishes TurnPrepared.
func (w *Simulation) PrepareNextTurn() (*gstate.StateDelta, error) {
	var delta *gstate.StateDelta
	var err error
	w.submit(func() {
		delta, err = w.scheduler.PrepareNextTurn(w.state, w.env)
		if err == nil {
			if w.metrics != nil {
				w.metrics.TurnsPrepared.WithLabelValues(w.sessionID).Inc()
			}
			w.bus.Publish(&bus.Event{Kind: bus.KindTurnPrepared, SessionID: w.sessionID, Nonce: w.state.Turn.Nonce, Actor: w.state.Turn.CurrentActor})
		}
	})
	return delta, err
}

// QueryState returns a deep clone of the live state, safe for the caller
// to read or mutate without affecting the worker.
func (w *Simulation) QueryState() *gstate.GameState {
	var snapshot *gstate.GameState
	w.submit(func() { snapshot = w.state.Clone() })
	return snapshot
}

// RestoreState replaces the live state wholesale — used when resuming a
// session from a checkpoint.
func (w *Simulation) RestoreState(s *gstate.GameState) {
	w.submit(func() { w.state = s.Clone() })
}

// CreateCheckpoint snapshots the live state into a batch.Checkpoint.
func (w *Simulation) CreateCheckpoint(logOffset int64) *batch.Checkpoint {
	var cp *batch.Checkpoint
	w.submit(func() {
		cp = &batch.Checkpoint{
			SessionID:        w.sessionID,
			Nonce:            w.state.Turn.Nonce,
			StateRoot:        gstate.StateRoot(w.state),
			HasStateSnapshot: true,
			ActionLogOffset:  logOffset,
			State:            w.state.Clone(),
		}
	})
	return cp
}
