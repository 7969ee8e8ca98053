package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
)

// PubSubFanout durably republishes every bus event to a Cloud Pub/Sub
// topic, for cross-process consumers (a separate prover fleet, an
// analytics pipeline) that cannot subscribe to the in-process Bus
// directly: it wraps the in-memory bus and publishes durably in addition
// to the local fan-out.
type PubSubFanout struct {
	bus    *Bus
	ch     chan *Event
	client *pubsub.Client
	topic  *pubsub.Topic
	stop   chan struct{}
}

// NewPubSubFanout subscribes to b and mirrors every event onto topicID
// under projectID, creating the topic if it doesn't exist.
func NewPubSubFanout(ctx context.Context, b *Bus, projectID, topicID string) (*PubSubFanout, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub.NewClient: %w", err)
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("topic.Exists: %w", err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("CreateTopic: %w", err)
		}
	}
	topic.EnableMessageOrdering = true

	f := &PubSubFanout{
		bus:    b,
		ch:     b.Subscribe(),
		client: client,
		topic:  topic,
		stop:   make(chan struct{}),
	}
	go f.run()
	return f, nil
}

func (f *PubSubFanout) run() {
	for {
		select {
		case <-f.stop:
			return
		case e := <-f.ch:
			f.publish(e)
		}
	}
}

// publish marshals e and publishes it with the session id as the
// ordering key, so a consumer sees one session's events in publish order
// even though Pub/Sub does not guarantee cross-session ordering.
func (f *PubSubFanout) publish(e *Event) {
	payload, err := json.Marshal(toWireEvent(e))
	if err != nil {
		slog.Error("pubsub fanout: marshal failed", "err", err)
		return
	}
	msg := &pubsub.Message{
		Data:        payload,
		OrderingKey: e.SessionID,
		Attributes: map[string]string{
			"kind":       string(e.Kind),
			"session_id": e.SessionID,
		},
	}
	result := f.topic.Publish(context.Background(), msg)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := result.Get(ctx); err != nil {
			slog.Error("pubsub fanout: publish failed", "kind", e.Kind, "session", e.SessionID, "err", err)
		}
	}()
}

// wireEvent is the JSON-safe projection of Event published to Pub/Sub —
// Delta and Err don't survive json.Marshal directly.
type wireEvent struct {
	Kind        string `json:"kind"`
	SessionID   string `json:"session_id"`
	Nonce       uint64 `json:"nonce"`
	Actor       uint32 `json:"actor,omitempty"`
	Error       string `json:"error,omitempty"`
	BatchStatus string `json:"batch_status,omitempty"`
}

func toWireEvent(e *Event) wireEvent {
	w := wireEvent{
		Kind:        string(e.Kind),
		SessionID:   e.SessionID,
		Nonce:       uint64(e.Nonce),
		Actor:       uint32(e.Actor),
		BatchStatus: e.BatchStatus,
	}
	if e.Err != nil {
		w.Error = e.Err.Error()
	}
	return w
}

// Close unsubscribes from the bus and shuts down the Pub/Sub client.
func (f *PubSubFanout) Close() error {
	close(f.stop)
	f.bus.Unsubscribe(f.ch)
	f.topic.Stop()
	return f.client.Close()
}
