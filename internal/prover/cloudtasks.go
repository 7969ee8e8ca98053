package prover

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
)

// CloudTasksDispatcher schedules out-of-process proving via Google Cloud
// Tasks instead of waiting for the Prover worker's local poll loop to
// notice a newly Complete batch: enqueue one HTTP task per event and let
// Cloud Tasks own retry and backoff.
type CloudTasksDispatcher struct {
	client      *cloudtasks.Client
	queuePath   string
	callbackURL string
}

// proveCallback is the JSON body POSTed to callbackURL when a task fires.
type proveCallback struct {
	SessionID  string `json:"session_id"`
	StartNonce uint64 `json:"start_nonce"`
}

// NewCloudTasksDispatcher connects to the named Cloud Tasks queue.
// callbackURL is the inspector HTTP endpoint Cloud Tasks POSTs to when a
// scheduled task executes (see cmd/roguevm's /internal/prove handler).
func NewCloudTasksDispatcher(ctx context.Context, projectID, locationID, queueID, callbackURL string) (*CloudTasksDispatcher, error) {
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("cloudtasks.NewClient: %w", err)
	}
	queuePath := fmt.Sprintf("projects/%s/locations/%s/queues/%s", projectID, locationID, queueID)
	return &CloudTasksDispatcher{client: client, queuePath: queuePath, callbackURL: callbackURL}, nil
}

// EnqueueProve schedules a task asking the prover fleet to prove the batch
// starting at startNonce for sessionID. Delivery is at-least-once; the
// handler on the other end must tolerate duplicate calls, which
// Prover.ProveNow does by treating a batch that isn't Complete anymore as
// a no-op.
func (d *CloudTasksDispatcher) EnqueueProve(ctx context.Context, sessionID string, startNonce uint64) error {
	body, err := json.Marshal(proveCallback{SessionID: sessionID, StartNonce: startNonce})
	if err != nil {
		return err
	}
	req := &taskspb.CreateTaskRequest{
		Parent: d.queuePath,
		Task: &taskspb.Task{
			MessageType: &taskspb.Task_HttpRequest{
				HttpRequest: &taskspb.HttpRequest{
					HttpMethod: taskspb.HttpMethod_POST,
					Url:        d.callbackURL,
					Headers:    map[string]string{"Content-Type": "application/json"},
					Body:       body,
				},
			},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = d.client.CreateTask(ctx, req)
	return err
}

// Close releases the underlying Cloud Tasks client.
func (d *CloudTasksDispatcher) Close() error { return d.client.Close() }
