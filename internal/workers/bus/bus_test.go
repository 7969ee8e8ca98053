package bus

import "testing"

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := New()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	e := &Event{Kind: KindTurnPrepared, SessionID: "s"}
	b.Publish(e)

	got1 := <-ch1
	got2 := <-ch2
	if got1 != e || got2 != e {
		t.Fatal("expected both subscribers to receive the same published event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if b.SubscriberCount() != 0 {
		t.Fatalf("expected zero subscribers after Unsubscribe, got %d", b.SubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected the unsubscribed channel to be closed")
	}
}

func TestPublishPanicsWhenSubscriberBufferIsFull(t *testing.T) {
	b := &Bus{capacity: 1}
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(&Event{Kind: KindTurnPrepared})

	defer func() {
		if recover() == nil {
			t.Fatal("expected Publish to panic once a subscriber's buffer is exhausted")
		}
	}()
	b.Publish(&Event{Kind: KindTurnPrepared})
}

func TestSubscriberCountTracksSubscribeAndUnsubscribe(t *testing.T) {
	b := New()
	if b.SubscriberCount() != 0 {
		t.Fatal("expected a fresh bus to have no subscribers")
	}
	ch := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.SubscriberCount())
	}
	b.Unsubscribe(ch)
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe, got %d", b.SubscriberCount())
	}
}
