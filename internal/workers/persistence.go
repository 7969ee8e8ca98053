package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ocx/roguevm/internal/batch"
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/metrics"
	"github.com/ocx/roguevm/internal/pb"
	"github.com/ocx/roguevm/internal/prover"
	"github.com/ocx/roguevm/internal/workers/bus"
)

func marshalDelta(d *gstate.StateDelta) ([]byte, error) {
	return json.Marshal(d)
}

// writeBackoff is the fixed retry schedule for a failed action log append.
// Exhausting it means the disk is unwritable — continuing would silently
// drop an action that the simulation already considers committed, so the
// worker treats that as fatal rather than skip the entry.
var writeBackoff = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
	1600 * time.Millisecond,
}

// Persistence subscribes to the event bus, appends every executed action
// to the session's action log, rolls checkpoints on its CheckpointStrategy,
// and advances the owning ActionBatch's status: one worker owns the
// durability path the way Simulation owns the mutation path.
type Persistence struct {
	sessionID   string
	bus         *bus.Bus
	ch          chan *bus.Event
	log         *batch.LogWriter
	checkpoints *batch.CheckpointStore
	strategy    batch.CheckpointStrategy
	repo        batch.Repository
	sim         *Simulation
	current     *batch.ActionBatch
	metrics     *metrics.Metrics
	cloudTasks  *prover.CloudTasksDispatcher
}

// NewPersistence wires a Persistence worker to logDir/sessionID/actions.log
// and starts its subscriber loop. m and cloudTasks may be nil; when
// cloudTasks is set, closing a batch enqueues a Cloud Task that nudges a
// prover fleet to pick the batch up immediately instead of waiting for
// the Prover worker's local poll loop to notice it.
func NewPersistence(sessionID string, b *bus.Bus, logDir string, checkpoints *batch.CheckpointStore, strategy batch.CheckpointStrategy, repo batch.Repository, sim *Simulation, m *metrics.Metrics, cloudTasks *prover.CloudTasksDispatcher) (*Persistence, error) {
	logPath := filepath.Join(logDir, sessionID, "actions.log")
	w, err := batch.NewLogWriter(logPath)
	if err != nil {
		return nil, err
	}
	p := &Persistence{
		sessionID:   sessionID,
		bus:         b,
		ch:          b.Subscribe(),
		log:         w,
		checkpoints: checkpoints,
		strategy:    strategy,
		repo:        repo,
		sim:         sim,
		current:     &batch.ActionBatch{SessionID: sessionID, Status: batch.StatusInProgress},
		metrics:     m,
		cloudTasks:  cloudTasks,
	}
	go p.run()
	return p, nil
}

func (p *Persistence) run() {
	for e := range p.ch {
		if e.SessionID != p.sessionID {
			continue
		}
		switch e.Kind {
		case bus.KindActionExecuted:
			p.handleExecuted(e)
		}
	}
}

func (p *Persistence) handleExecuted(e *bus.Event) {
	deltaJSON, err := marshalDelta(e.Delta)
	if err != nil {
		panic(errs.Wrap(errs.KindCorruptArtifact, "action delta did not marshal", err))
	}
	entry := &pb.ActionLogEntry{
		SessionId:  p.sessionID,
		Nonce:      uint64(e.Nonce),
		ActorId:    uint32(e.Actor),
		ActionKind: string(e.Delta.Action.Kind),
		DeltaJSON:  deltaJSON,
	}

	var offset int64
	var appendErr error
	for attempt := 0; attempt <= len(writeBackoff); attempt++ {
		offset, appendErr = p.log.Append(entry)
		if appendErr == nil {
			break
		}
		if attempt == len(writeBackoff) {
			panic(errs.Wrap(errs.KindWriteExhausted, "action log append exhausted retries", appendErr))
		}
		slog.Warn("action log append failed, retrying", "session", p.sessionID, "nonce", e.Nonce, "attempt", attempt, "err", appendErr)
		time.Sleep(writeBackoff[attempt])
	}

	p.current.EndNonce = e.Nonce

	if p.strategy.ShouldCheckpoint(e.Nonce) {
		cp := p.sim.CreateCheckpoint(offset)
		if err := p.checkpoints.Save(cp); err != nil {
			slog.Error("checkpoint save failed", "session", p.sessionID, "nonce", e.Nonce, "err", err)
		}
		if err := p.closeBatch(); err != nil {
			slog.Error("batch close failed", "session", p.sessionID, "err", err)
		}
	}
}

// closeBatch transitions the in-flight batch to Complete, persists it, and
// opens a fresh InProgress batch starting at the next nonce.
func (p *Persistence) closeBatch() error {
	ctx := context.Background()
	if err := p.current.Transition(batch.StatusComplete); err != nil {
		return err
	}
	if err := p.repo.Create(ctx, p.current); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.BatchesCompleted.WithLabelValues(p.sessionID).Inc()
	}
	p.bus.Publish(&bus.Event{Kind: bus.KindBatchStatusChanged, SessionID: p.sessionID, Nonce: p.current.EndNonce, BatchStatus: p.current.Status.String()})
	if p.cloudTasks != nil {
		startNonce := p.current.StartNonce
		go func() {
			if err := p.cloudTasks.EnqueueProve(context.Background(), p.sessionID, uint64(startNonce)); err != nil {
				slog.Error("cloud tasks enqueue failed", "session", p.sessionID, "start_nonce", startNonce, "err", err)
			}
		}()
	}
	p.current = &batch.ActionBatch{SessionID: p.sessionID, StartNonce: p.current.EndNonce + 1, Status: batch.StatusInProgress}
	return nil
}

// Close unsubscribes from the bus and closes the action log file.
func (p *Persistence) Close() error {
	p.bus.Unsubscribe(p.ch)
	return p.log.Close()
}
