package batch

import (
	"context"
	"io"
	"path/filepath"

	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/pb"
)

// Inspector implements pb.SimulationInspectorServer over a Repository and
// a CheckpointStore — the read path cmd/roguevm's `--http` mode goes
// through.
type Inspector struct {
	pb.UnimplementedSimulationInspectorServer
	Repo         Repository
	Checkpoints  *CheckpointStore
	ActionLogDir string
}

func (i *Inspector) GetActionLogEntry(ctx context.Context, req *pb.GetActionLogEntryRequest) (*pb.ActionLogEntry, error) {
	path := filepath.Join(i.ActionLogDir, req.SessionId, "actions.log")
	r, err := NewLogReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	for {
		e, err := r.ReadNext()
		if err == io.EOF {
			return nil, errs.New(errs.KindBatchNotRdy, "nonce not found in action log")
		}
		if err != nil {
			return nil, err
		}
		if e.Nonce == req.Nonce {
			return e, nil
		}
	}
}

func (i *Inspector) GetBatchStatus(ctx context.Context, req *pb.GetBatchStatusRequest) (*pb.ActionBatch, error) {
	b, err := i.Repo.Get(ctx, req.SessionId, gstate.Nonce(req.StartNonce))
	if err != nil {
		return nil, err
	}
	return b.toWire(), nil
}

func (i *Inspector) GetCheckpoint(ctx context.Context, req *pb.GetCheckpointRequest) (*pb.Checkpoint, error) {
	cp, err := i.Checkpoints.LatestAtOrBefore(req.SessionId, gstate.Nonce(req.Nonce))
	if err != nil {
		return nil, err
	}
	return cp.toWire(), nil
}
