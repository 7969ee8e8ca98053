// Package batch implements the checkpoint-bounded proving unit: the
// ActionBatch status machine, its Postgres-backed repository, the
// append-only mmap action log, and the checkpoint strategy that decides
// when a batch closes.
package batch

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/pb"
)

// Status mirrors pb.BatchStatus with the package's own name so callers
// outside internal/pb don't need to import the wire package just to
// compare states.
type Status = pb.BatchStatus

const (
	StatusInProgress        = pb.BatchStatus_IN_PROGRESS
	StatusComplete          = pb.BatchStatus_COMPLETE
	StatusProving           = pb.BatchStatus_PROVING
	StatusProven            = pb.BatchStatus_PROVEN
	StatusUploadingToWalrus = pb.BatchStatus_UPLOADING_TO_WALRUS
	StatusBlobUploaded      = pb.BatchStatus_BLOB_UPLOADED
	StatusSubmittingOnchain = pb.BatchStatus_SUBMITTING_ONCHAIN
	StatusOnChain           = pb.BatchStatus_ON_CHAIN
	StatusFailed            = pb.BatchStatus_FAILED
)

// validNext is the closed status-transition graph: InProgress
// -> Complete -> Proving -> {Proven -> UploadingToWalrus -> BlobUploaded
// -> SubmittingOnchain -> OnChain, Failed}. Failed can retry back to
// Proving; every other edge is one-directional.
var validNext = map[Status][]Status{
	StatusInProgress:        {StatusComplete},
	StatusComplete:          {StatusProving},
	StatusProving:           {StatusProven, StatusFailed},
	StatusProven:            {StatusUploadingToWalrus, StatusFailed},
	StatusUploadingToWalrus: {StatusBlobUploaded, StatusFailed},
	StatusBlobUploaded:      {StatusSubmittingOnchain, StatusFailed},
	StatusSubmittingOnchain: {StatusOnChain, StatusFailed},
	StatusFailed:            {StatusProving},
	StatusOnChain:           {},
}

// ActionBatch is the domain-level batch record. StartNonce/EndNonce are
// inclusive bounds on the session's action log.
type ActionBatch struct {
	SessionID  string
	StartNonce gstate.Nonce
	EndNonce   gstate.Nonce
	Status     Status
	RetryCount int32
	Journal    []byte
	UpdatedAt  time.Time
}

// Transition moves the batch to next, rejecting any edge not present in
// validNext.
func (b *ActionBatch) Transition(next Status) error {
	for _, ok := range validNext[b.Status] {
		if ok == next {
			retry := next == StatusProving && b.Status == StatusFailed
			b.Status = next
			b.UpdatedAt = time.Now()
			if retry {
				b.RetryCount++
			}
			return nil
		}
	}
	return errs.New(errs.KindStateInconsist, "illegal batch status transition: "+b.Status.String()+" -> "+next.String())
}

// MarkFailed transitions to Failed and increments the retry counter,
// regardless of which in-flight state the batch was in — every non-
// terminal state can fail.
func (b *ActionBatch) MarkFailed() {
	b.Status = StatusFailed
	b.RetryCount++
	b.UpdatedAt = time.Now()
}

func (b *ActionBatch) toWire() *pb.ActionBatch {
	updatedAt := b.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return &pb.ActionBatch{
		SessionId:    b.SessionID,
		StartNonce:   uint64(b.StartNonce),
		EndNonce:     uint64(b.EndNonce),
		Status:       b.Status,
		RetryCount:   b.RetryCount,
		ProofJournal: b.Journal,
		UpdatedAt:    timestamppb.New(updatedAt),
	}
}

func fromWire(w *pb.ActionBatch) *ActionBatch {
	b := &ActionBatch{
		SessionID:  w.SessionId,
		StartNonce: gstate.Nonce(w.StartNonce),
		EndNonce:   gstate.Nonce(w.EndNonce),
		Status:     w.Status,
		RetryCount: w.RetryCount,
		Journal:    w.ProofJournal,
	}
	if w.UpdatedAt != nil {
		b.UpdatedAt = w.UpdatedAt.AsTime()
	}
	return b
}
