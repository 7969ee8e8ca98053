package workers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ocx/roguevm/internal/batch"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/pb"
	"github.com/ocx/roguevm/internal/prover"
)

func TestNoopBackendComposesJournalFromRequest(t *testing.T) {
	req := prover.Request{
		OracleRoot:    gstate.Root{1},
		PrevStateRoot: gstate.Root{2},
		EndNonce:      7,
	}
	result, err := prover.NoopBackend{}.Prove(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	j, err := prover.ParseJournal(result.Journal)
	if err != nil {
		t.Fatalf("expected a well-formed journal, got parse error: %v", err)
	}
	if j.OracleRoot != req.OracleRoot {
		t.Fatal("expected the journal's oracle root to match the request")
	}
	if j.NewNonce != gstate.Nonce(req.EndNonce) {
		t.Fatalf("expected the journal's new nonce to match EndNonce, got %d", j.NewNonce)
	}
}

func TestProverCollectActionsFiltersByNonceRange(t *testing.T) {
	logDir := t.TempDir()
	sessDir := filepath.Join(logDir, "sess-1")
	if err := os.MkdirAll(sessDir, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := batch.NewLogWriter(filepath.Join(sessDir, "actions.log"))
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []uint64{1, 2, 3, 4} {
		if _, err := w.Append(&pb.ActionLogEntry{SessionId: "sess-1", Nonce: n}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	p := &Prover{logDir: logDir}
	raw, err := p.collectActions(&batch.ActionBatch{SessionID: "sess-1", StartNonce: 2, EndNonce: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 entries in range [2,3], got %d", len(entries))
	}
	var first pb.ActionLogEntry
	if err := json.Unmarshal(entries[0], &first); err != nil {
		t.Fatal(err)
	}
	if first.Nonce != 2 {
		t.Fatalf("expected the first collected entry to have nonce 2, got %d", first.Nonce)
	}
}
