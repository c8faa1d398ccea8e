package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	pid := "p1"
	ch := b.Subscribe(pid)

	evt := SSEEvent{Type: "plan.created", Data: map[string]any{"planId": pid}}
	b.Publish(pid, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["planId"].(string) != pid {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(pid, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		// acceptable if already drained and closed
	}
}

func TestBrokerIsolatesPlans(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("p1")
	defer b.Unsubscribe("p1", ch)

	b.Publish("p2", SSEEvent{Type: "plan.created"})
	select {
	case evt := <-ch:
		t.Fatalf("received event for another plan: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerDropsWhenSubscriberSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("p1")
	defer b.Unsubscribe("p1", ch)

	// Channel buffer is 8; extra publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			b.Publish("p1", SSEEvent{Type: "track.position"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("publish blocked on slow subscriber")
	}
}
