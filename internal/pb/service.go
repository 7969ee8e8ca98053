package pb

import "context"

// GetActionLogEntryRequest addresses one log entry by session and nonce.
type GetActionLogEntryRequest struct {
	SessionId string
	Nonce     uint64
}

// GetCheckpointRequest addresses the checkpoint at or before a nonce.
type GetCheckpointRequest struct {
	SessionId string
	Nonce     uint64
}

// GetBatchStatusRequest addresses a batch by its starting nonce.
type GetBatchStatusRequest struct {
	SessionId  string
	StartNonce uint64
}

// SimulationInspectorServer is the read-only surface the `--http`
// inspector mode (cmd/roguevm) proxies to gorilla/mux handlers.
type SimulationInspectorServer interface {
	GetActionLogEntry(context.Context, *GetActionLogEntryRequest) (*ActionLogEntry, error)
	GetCheckpoint(context.Context, *GetCheckpointRequest) (*Checkpoint, error)
	GetBatchStatus(context.Context, *GetBatchStatusRequest) (*ActionBatch, error)
}

// UnimplementedSimulationInspectorServer embeds into a concrete server so
// adding a method to the interface later doesn't break existing
// implementations — the usual grpc-go generated-code convention.
type UnimplementedSimulationInspectorServer struct{}

func (UnimplementedSimulationInspectorServer) GetActionLogEntry(context.Context, *GetActionLogEntryRequest) (*ActionLogEntry, error) {
	return nil, nil
}
func (UnimplementedSimulationInspectorServer) GetCheckpoint(context.Context, *GetCheckpointRequest) (*Checkpoint, error) {
	return nil, nil
}
func (UnimplementedSimulationInspectorServer) GetBatchStatus(context.Context, *GetBatchStatusRequest) (*ActionBatch, error) {
	return nil, nil
}
