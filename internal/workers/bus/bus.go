// Package bus implements the broadcast event bus every worker in the
// mesh communicates over. It deliberately does not drop an event when a
// subscriber's channel fills up — that's the right call for a
// best-effort SSE stream, but the wrong one here: a lagging persistence
// or prover subscriber missing an ActionExecuted event would desync the
// very state it exists to keep durable. This bus panics instead:
// correctness over availability.
package bus

import (
	"fmt"
	"sync"

	"github.com/ocx/roguevm/internal/gstate"
)

// Kind is the closed set of event variants published on the bus.
type Kind string

const (
	KindTurnPrepared       Kind = "turn.prepared"
	KindActionExecuted     Kind = "game_state.action_executed"
	KindActionFailed       Kind = "game_state.action_failed"
	KindProofGenerated     Kind = "proof.generated"
	KindProofFailed        Kind = "proof.failed"
	KindBatchStatusChanged Kind = "proof.batch_status_changed"
)

// Event is the single envelope type carried on the bus. Only the fields
// relevant to Kind are populated, mirroring the tagged-variant shape
// used throughout this codebase (gstate.ActionKind, oracle.EffectKind).
type Event struct {
	Kind        Kind
	SessionID   string
	Nonce       gstate.Nonce
	Actor       gstate.EntityID
	Delta       *gstate.StateDelta
	Err         error
	BatchStatus string
	Journal     []byte
}

// DefaultCapacity is the per-subscriber channel buffer: large
// enough to absorb a burst of system actions from one hook chain without
// a momentarily slow subscriber tripping the fatal-on-lag panic.
const DefaultCapacity = 50000

// Bus is an in-process broadcast publisher. Every Subscribe call gets its
// own buffered channel and receives every Publish call, in publish order.
type Bus struct {
	mu       sync.RWMutex
	subs     []chan *Event
	capacity int
}

// New returns a Bus with DefaultCapacity-sized subscriber buffers.
func New() *Bus { return &Bus{capacity: DefaultCapacity} }

// Subscribe registers a new receiver. Callers must eventually call
// Unsubscribe to release the channel.
func (b *Bus) Subscribe() chan *Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *Event, b.capacity)
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes and closes ch.
func (b *Bus) Unsubscribe(ch chan *Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	filtered := b.subs[:0]
	for _, s := range b.subs {
		if s != ch {
			filtered = append(filtered, s)
		}
	}
	b.subs = filtered
	close(ch)
}

// Publish fans e out to every subscriber. A subscriber whose buffer is
// already full means that subscriber has fallen behind the simulation
// clock by DefaultCapacity events — continuing would silently desync
// persistence or proving from the live GameState, so Publish panics
// rather than drop or block.
func (b *Bus) Publish(e *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			panic(fmt.Sprintf("event bus subscriber lagging past capacity %d on %s", b.capacity, e.Kind))
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
