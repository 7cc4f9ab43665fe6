package messaging

import (
	"context"
	"testing"
	"time"

	contractsv1 "hustings/contracts/gen/events/v1"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka failed: %v", err)
	}

	received := make(chan contractsv1.Envelope, 1)
	err = bus.Subscribe(context.Background(), "vote.cast", "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	want := contractsv1.Envelope{
		EventID:       "event-1",
		EventType:     "vote.cast",
		OccurredAt:    time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC),
		SourceService: "election-engine",
		SchemaVersion: contractsv1.SchemaVersion,
		PartitionKey:  "election",
	}
	if err := bus.Publish(context.Background(), "vote.cast", want); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != want.EventID || got.EventType != want.EventType {
			t.Fatalf("expected envelope %+v, got %+v", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected delivery within 2s")
	}
}

func TestPublishReachesOnlyMatchingTopic(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka failed: %v", err)
	}

	other := make(chan contractsv1.Envelope, 1)
	err = bus.Subscribe(context.Background(), "voter.added", "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		other <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(context.Background(), "vote.cast", contractsv1.Envelope{EventID: "event-1", EventType: "vote.cast"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case event := <-other:
		t.Fatalf("unexpected delivery on voter.added: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan contractsv1.Envelope, 1)
	err = bus.Subscribe(ctx, "vote.cast", "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	cancel()

	// The consumer goroutine unregisters itself after cancellation; poll until
	// the subscriber list drains.
	deadline := time.Now().Add(2 * time.Second)
	for {
		bus.mu.RLock()
		remaining := len(bus.subscribers["vote.cast"])
		bus.mu.RUnlock()
		if remaining == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected subscriber removal after cancel, %d remaining", remaining)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := bus.Publish(context.Background(), "vote.cast", contractsv1.Envelope{EventID: "event-1"}); err != nil {
		t.Fatalf("publish after cancel failed: %v", err)
	}
	select {
	case event := <-received:
		t.Fatalf("unexpected delivery after cancel: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}
