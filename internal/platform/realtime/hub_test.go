package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func newTestClient(topics ...string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Topics: topics,
		Send:   make(chan []byte, 16),
	}
}

func TestRegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	topic := UserTopic(userID)

	client := newTestClient(topic)
	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
	if hub.TopicCount(topic) != 1 {
		t.Fatalf("expected 1 subscriber on %s, got %d", topic, hub.TopicCount(topic))
	}

	hub.Broadcast(topic, Event{Type: EventNewNotification, Topic: topic})

	select {
	case msg := <-client.Send:
		if len(msg) == 0 {
			t.Error("expected non-empty payload")
		}
	default:
		t.Error("expected event to be delivered")
	}
}

func TestBroadcast_OnlyMatchingTopic(t *testing.T) {
	hub := NewHub()
	a := newTestClient(UserTopic(uuid.New()))
	b := newTestClient(UserTopic(uuid.New()))
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(a.Topics[0], Event{Type: EventNewNotification, Topic: a.Topics[0]})

	if len(a.Send) != 1 {
		t.Errorf("expected subscriber to receive event, got %d", len(a.Send))
	}
	if len(b.Send) != 0 {
		t.Errorf("expected other user's channel to stay empty, got %d", len(b.Send))
	}
}

func TestUnregister_ClosesSend(t *testing.T) {
	hub := NewHub()
	topic := UserTopic(uuid.New())
	client := newTestClient(topic)
	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
	if hub.TopicCount(topic) != 0 {
		t.Errorf("expected topic to be cleaned up, got %d", hub.TopicCount(topic))
	}

	if _, open := <-client.Send; open {
		t.Error("expected Send channel to be closed")
	}

	// Unregistering twice must not panic.
	hub.Unregister(client)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	client := newTestClient()
	client.UserID = userID
	hub.Register(client)

	topic := UserTopic(userID)
	hub.ProcessMessage(client, ClientMessage{Action: "subscribe", Topics: []string{topic}})
	if hub.TopicCount(topic) != 1 {
		t.Fatalf("expected subscription, got %d", hub.TopicCount(topic))
	}

	hub.ProcessMessage(client, ClientMessage{Action: "unsubscribe", Topics: []string{topic}})
	if hub.TopicCount(topic) != 0 {
		t.Fatalf("expected unsubscription, got %d", hub.TopicCount(topic))
	}
	if len(client.Topics) != 0 {
		t.Errorf("expected client topic list to be empty, got %v", client.Topics)
	}
}

func TestSubscribe_ForeignUserTopicIgnored(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	client.UserID = uuid.New()
	hub.Register(client)

	other := UserTopic(uuid.New())
	hub.ProcessMessage(client, ClientMessage{Action: "subscribe", Topics: []string{other, UserTopic(client.UserID)}})

	if hub.TopicCount(other) != 0 {
		t.Errorf("expected foreign user channel to be refused, got %d subscribers", hub.TopicCount(other))
	}
	if hub.TopicCount(UserTopic(client.UserID)) != 1 {
		t.Errorf("expected own channel subscription to survive the filter")
	}

	hub.Broadcast(other, Event{Type: EventNewNotification, Topic: other})
	if len(client.Send) != 0 {
		t.Errorf("expected no cross-user delivery, got %d", len(client.Send))
	}
}

func TestBroadcast_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()
	topic := UserTopic(uuid.New())
	client := &Client{ID: "slow", Topics: []string{topic}, Send: make(chan []byte, 1)}
	hub.Register(client)

	// Second broadcast hits a full buffer and must be dropped, not block.
	hub.Broadcast(topic, Event{Type: EventNewNotification, Topic: topic})
	hub.Broadcast(topic, Event{Type: EventNewNotification, Topic: topic})

	if len(client.Send) != 1 {
		t.Errorf("expected exactly 1 buffered event, got %d", len(client.Send))
	}
}

func TestPublish(t *testing.T) {
	hub := NewHub()
	topic := UserTopic(uuid.New())
	client := newTestClient(topic)
	hub.Register(client)

	if err := hub.Publish(context.Background(), Event{Type: EventAllRead, Topic: topic}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.Send) != 1 {
		t.Errorf("expected published event to be delivered, got %d", len(client.Send))
	}
}
