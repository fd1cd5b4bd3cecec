package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	engagementID := uuid.New()

	sub := hub.subscribe(engagementID)
	defer hub.unsubscribe(engagementID, sub)

	hub.Publish(engagementID, "message.created", map[string]any{"body": "hello"})

	select {
	case msg := <-sub.ch:
		if msg.Event != "message.created" {
			t.Errorf("expected event message.created, got %q", msg.Event)
		}
		if msg.Data["body"] != "hello" {
			t.Errorf("unexpected payload: %+v", msg.Data)
		}
		if msg.TS == 0 {
			t.Error("expected a timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestPublishScopesToEngagement(t *testing.T) {
	hub := NewHub()
	engagementID := uuid.New()
	otherID := uuid.New()

	sub := hub.subscribe(otherID)
	defer hub.unsubscribe(otherID, sub)

	hub.Publish(engagementID, "message.created", nil)

	select {
	case msg := <-sub.ch:
		t.Fatalf("subscriber of another engagement received %q", msg.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	engagementID := uuid.New()

	sub := hub.subscribe(engagementID)
	defer hub.unsubscribe(engagementID, sub)

	// Fill the buffer and then publish one more; the overflow event must be
	// dropped without blocking.
	for i := 0; i < sendBuffer+10; i++ {
		hub.Publish(engagementID, "goal.updated", nil)
	}

	if got := len(sub.ch); got != sendBuffer {
		t.Errorf("expected a full buffer of %d events, got %d", sendBuffer, got)
	}
}

func TestUnsubscribeRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	engagementID := uuid.New()

	sub := hub.subscribe(engagementID)
	if got := hub.SubscriberCount(engagementID); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	hub.unsubscribe(engagementID, sub)
	if got := hub.SubscriberCount(engagementID); got != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", got)
	}
}

func TestNilHubIsSafe(t *testing.T) {
	var hub *Hub
	hub.Publish(uuid.New(), "message.created", nil)
	if got := hub.SubscriberCount(uuid.New()); got != 0 {
		t.Errorf("nil hub should report 0 subscribers, got %d", got)
	}
}
