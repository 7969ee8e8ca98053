// Package pb holds the wire-format types exchanged between the
// simulation process and its out-of-process collaborators (the
// inspector UI, the prover worker's journal hand-off). These are
// hand-written structs rather than protoc-generated code — there is no
// .proto source of truth here, just the grpc/protobuf runtime types
// (timestamppb) wired directly onto plain Go structs.
package pb

import "google.golang.org/protobuf/types/known/timestamppb"

// ActionLogEntry is one append-only record in a session's action log.
// DeltaJSON is the gstate.StateDelta serialized with encoding/json — the
// delta's json tags exist for exactly this, and nothing downstream of
// the log needs canonical/hash-stable bytes (only GameState/OracleSnapshot
// roots do).
type ActionLogEntry struct {
	SessionId  string
	Nonce      uint64
	ActorId    uint32
	ActionKind string
	DeltaJSON  []byte
	Timestamp  *timestamppb.Timestamp
}

// Checkpoint is a periodic full-state snapshot marker used to bound
// batch-proving replay distance.
type Checkpoint struct {
	SessionId        string
	Nonce            uint64
	StateRoot        []byte // gstate.Root, 32 bytes
	HasStateSnapshot bool
	ActionLogOffset  int64
	Timestamp        *timestamppb.Timestamp
}

// BatchStatus is the status-machine state of an ActionBatch.
type BatchStatus int32

const (
	BatchStatus_IN_PROGRESS          BatchStatus = 0
	BatchStatus_COMPLETE             BatchStatus = 1
	BatchStatus_PROVING              BatchStatus = 2
	BatchStatus_PROVEN               BatchStatus = 3
	BatchStatus_UPLOADING_TO_WALRUS  BatchStatus = 4
	BatchStatus_BLOB_UPLOADED        BatchStatus = 5
	BatchStatus_SUBMITTING_ONCHAIN   BatchStatus = 6
	BatchStatus_ON_CHAIN             BatchStatus = 7
	BatchStatus_FAILED               BatchStatus = 8
)

func (s BatchStatus) String() string {
	switch s {
	case BatchStatus_IN_PROGRESS:
		return "in_progress"
	case BatchStatus_COMPLETE:
		return "complete"
	case BatchStatus_PROVING:
		return "proving"
	case BatchStatus_PROVEN:
		return "proven"
	case BatchStatus_UPLOADING_TO_WALRUS:
		return "uploading_to_walrus"
	case BatchStatus_BLOB_UPLOADED:
		return "blob_uploaded"
	case BatchStatus_SUBMITTING_ONCHAIN:
		return "submitting_onchain"
	case BatchStatus_ON_CHAIN:
		return "on_chain"
	case BatchStatus_FAILED:
		return "failed"
	default:
		return "unknown"
	}
}

// ActionBatch is the checkpoint-bounded unit of proof work.
type ActionBatch struct {
	SessionId    string
	StartNonce   uint64
	EndNonce     uint64
	Status       BatchStatus
	RetryCount   int32
	ProofJournal []byte // the 168-byte journal once Status >= PROVEN
	UpdatedAt    *timestamppb.Timestamp
}
