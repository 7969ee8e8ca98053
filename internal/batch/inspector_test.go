package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/pb"
)

type inspectorFakeRepo struct {
	batches map[string]*ActionBatch
}

func (r *inspectorFakeRepo) Create(ctx context.Context, b *ActionBatch) error { return nil }
func (r *inspectorFakeRepo) Update(ctx context.Context, b *ActionBatch) error { return nil }
func (r *inspectorFakeRepo) Get(ctx context.Context, sessionID string, startNonce gstate.Nonce) (*ActionBatch, error) {
	b, ok := r.batches[sessionID]
	if !ok {
		return nil, os.ErrNotExist
	}
	return b, nil
}
func (r *inspectorFakeRepo) OldestByStatus(ctx context.Context, status Status) (*ActionBatch, error) {
	return nil, nil
}

func TestInspectorGetActionLogEntryFindsMatchingNonce(t *testing.T) {
	logDir := t.TempDir()
	sessDir := filepath.Join(logDir, "sess-1")
	if err := os.MkdirAll(sessDir, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := NewLogWriter(filepath.Join(sessDir, "actions.log"))
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []uint64{1, 2, 3} {
		if _, err := w.Append(&pb.ActionLogEntry{SessionId: "sess-1", Nonce: n}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	insp := &Inspector{ActionLogDir: logDir}
	entry, err := insp.GetActionLogEntry(context.Background(), &pb.GetActionLogEntryRequest{SessionId: "sess-1", Nonce: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Nonce != 2 {
		t.Fatalf("expected nonce 2, got %d", entry.Nonce)
	}
	if entry.Timestamp == nil {
		t.Fatal("expected Append to have stamped a timestamp that survives the round trip")
	}
}

func TestInspectorGetActionLogEntryMissingNonceFails(t *testing.T) {
	logDir := t.TempDir()
	sessDir := filepath.Join(logDir, "sess-1")
	if err := os.MkdirAll(sessDir, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := NewLogWriter(filepath.Join(sessDir, "actions.log"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Append(&pb.ActionLogEntry{SessionId: "sess-1", Nonce: 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	insp := &Inspector{ActionLogDir: logDir}
	if _, err := insp.GetActionLogEntry(context.Background(), &pb.GetActionLogEntryRequest{SessionId: "sess-1", Nonce: 99}); err == nil {
		t.Fatal("expected a missing nonce to fail")
	}
}

func TestInspectorGetBatchStatusDelegatesToRepository(t *testing.T) {
	repo := &inspectorFakeRepo{batches: map[string]*ActionBatch{
		"sess-1": {SessionID: "sess-1", StartNonce: 0, EndNonce: 5, Status: StatusComplete},
	}}
	insp := &Inspector{Repo: repo}
	wire, err := insp.GetBatchStatus(context.Background(), &pb.GetBatchStatusRequest{SessionId: "sess-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wire.Status != pb.BatchStatus_COMPLETE {
		t.Fatalf("expected a Complete status on the wire, got %v", wire.Status)
	}
	if wire.UpdatedAt == nil {
		t.Fatal("expected toWire to stamp UpdatedAt even for a batch that never transitioned")
	}
}

func TestInspectorGetCheckpointReturnsLatestAtOrBefore(t *testing.T) {
	dir := t.TempDir()
	store := NewCheckpointStore(dir)
	for _, n := range []gstate.Nonce{5, 10} {
		if err := store.Save(&Checkpoint{SessionID: "sess-1", Nonce: n}); err != nil {
			t.Fatal(err)
		}
	}
	insp := &Inspector{Checkpoints: store}
	wire, err := insp.GetCheckpoint(context.Background(), &pb.GetCheckpointRequest{SessionId: "sess-1", Nonce: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wire.Nonce != 10 {
		t.Fatalf("expected the checkpoint at or before nonce 12 to be nonce 10, got %d", wire.Nonce)
	}
	if wire.Timestamp == nil {
		t.Fatal("expected the loaded checkpoint's CreatedAt to survive onto the wire")
	}
}
