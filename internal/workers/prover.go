package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ocx/roguevm/internal/batch"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/metrics"
	"github.com/ocx/roguevm/internal/oracle"
	"github.com/ocx/roguevm/internal/prover"
	"github.com/ocx/roguevm/internal/workers/bus"
)

const leaseTTL = 10 * time.Minute

// Prover polls the repository for the oldest Complete batch across every
// session, leases it in Redis so no other prover instance duplicates the
// work, reconstructs the batch's replay inputs from the checkpoint store
// and action log, and drives it through Backend.Prove.
type Prover struct {
	owner       string
	bus         *bus.Bus
	repo        batch.Repository
	checkpoints *batch.CheckpointStore
	logDir      string
	env         oracle.Env
	backend     prover.Backend
	lease       *prover.Lease
	pollEvery   time.Duration
	metrics     *metrics.Metrics
	stop        chan struct{}
}

// NewProver starts the prover worker's poll loop. m may be nil.
func NewProver(b *bus.Bus, repo batch.Repository, checkpoints *batch.CheckpointStore, logDir string, env oracle.Env, backend prover.Backend, lease *prover.Lease, m *metrics.Metrics) *Prover {
	p := &Prover{
		owner:       uuid.NewString(),
		bus:         b,
		repo:        repo,
		checkpoints: checkpoints,
		logDir:      logDir,
		env:         env,
		backend:     backend,
		lease:       lease,
		pollEvery:   2 * time.Second,
		metrics:     m,
		stop:        make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Prover) Stop() { close(p.stop) }

func (p *Prover) run() {
	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

func (p *Prover) pollOnce() {
	ctx := context.Background()
	b, err := p.repo.OldestByStatus(ctx, batch.StatusComplete)
	if err != nil {
		return
	}
	got, err := p.lease.Acquire(ctx, b.SessionID, uint64(b.StartNonce), p.owner, leaseTTL)
	if err != nil || !got {
		return
	}
	defer p.lease.Release(ctx, b.SessionID, uint64(b.StartNonce))

	if err := p.proveBatch(ctx, b); err != nil {
		slog.Error("batch proving failed", "session", b.SessionID, "start_nonce", b.StartNonce, "err", err)
		b.MarkFailed()
		p.repo.Update(ctx, b)
		if p.metrics != nil {
			p.metrics.ProofsFailed.WithLabelValues(b.SessionID, p.backend.Name()).Inc()
		}
		p.bus.Publish(&bus.Event{Kind: bus.KindProofFailed, SessionID: b.SessionID, Nonce: b.EndNonce, Err: err})
		return
	}
}

// ProveNow drives the batch starting at startNonce for sessionID through
// proving immediately, bypassing the poll loop's scan-then-lease cadence.
// The Cloud Tasks callback handler calls this when a dispatched task
// fires; a duplicate delivery is harmless because a batch that already
// left StatusComplete is treated as a no-op rather than re-proven.
func (p *Prover) ProveNow(ctx context.Context, sessionID string, startNonce uint64) error {
	b, err := p.repo.Get(ctx, sessionID, gstate.Nonce(startNonce))
	if err != nil {
		return err
	}
	if b.Status != batch.StatusComplete {
		return nil
	}
	got, err := p.lease.Acquire(ctx, sessionID, startNonce, p.owner, leaseTTL)
	if err != nil || !got {
		return nil
	}
	defer p.lease.Release(ctx, sessionID, startNonce)
	return p.proveBatch(ctx, b)
}

func (p *Prover) proveBatch(ctx context.Context, b *batch.ActionBatch) error {
	if err := b.Transition(batch.StatusProving); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, b); err != nil {
		return err
	}
	p.bus.Publish(&bus.Event{Kind: bus.KindBatchStatusChanged, SessionID: b.SessionID, Nonce: b.StartNonce, BatchStatus: b.Status.String()})

	cp, err := p.checkpoints.LatestAtOrBefore(b.SessionID, b.StartNonce)
	if err != nil {
		return err
	}
	checkpointJSON, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	actionLogJSON, err := p.collectActions(b)
	if err != nil {
		return err
	}

	req := prover.Request{
		SessionID:      b.SessionID,
		OracleRoot:     p.env.OracleRoot,
		PrevStateRoot:  cp.StateRoot,
		StartNonce:     uint64(b.StartNonce),
		EndNonce:       uint64(b.EndNonce),
		CheckpointJSON: checkpointJSON,
		ActionLogJSON:  actionLogJSON,
	}
	started := time.Now()
	result, err := p.backend.Prove(ctx, req)
	elapsed := time.Since(started)
	if err != nil {
		return err
	}

	b.Journal = result.Journal
	if err := b.Transition(batch.StatusProven); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, b); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.ProofsGenerated.WithLabelValues(b.SessionID, p.backend.Name()).Inc()
		p.metrics.ProofDuration.WithLabelValues(b.SessionID, p.backend.Name()).Observe(elapsed.Seconds())
	}
	p.bus.Publish(&bus.Event{Kind: bus.KindProofGenerated, SessionID: b.SessionID, Nonce: b.EndNonce, Journal: result.Journal})
	return nil
}

// collectActions gathers the raw JSON entries for [StartNonce, EndNonce]
// out of the session's mmapped action log, the slice the prover replays
// from the checkpoint's starting state.
func (p *Prover) collectActions(b *batch.ActionBatch) ([]byte, error) {
	r, err := batch.NewLogReader(p.logDir + "/" + b.SessionID + "/actions.log")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var entries []json.RawMessage
	for {
		e, err := r.ReadNext()
		if err != nil {
			break
		}
		if e.Nonce < uint64(b.StartNonce) {
			continue
		}
		if e.Nonce > uint64(b.EndNonce) {
			break
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		entries = append(entries, raw)
	}
	return json.Marshal(entries)
}
