package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/eduworld/portal/internal/model"
)

const (
	// StreamName is the name of the chat events stream.
	StreamName = "CHAT_EVENTS"

	// SubjectPrefix is the prefix for all chat event subjects.
	SubjectPrefix = "chat"
)

// EventPublisher writes chat session events to JetStream.
type EventPublisher struct {
	client *Client
}

// NewEventPublisher creates a publisher on client.
func NewEventPublisher(client *Client) *EventPublisher {
	return &EventPublisher{client: client}
}

// EnsureStream creates the chat events stream when it does not exist.
// Events are kept in memory for a day; transcripts are not a durable store.
func (p *EventPublisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxBytes:    256 * 1024 * 1024,
		Storage:     jetstream.MemoryStorage,
		Replicas:    1,
		Discard:     jetstream.DiscardOld,
		Description: "Chat widget transcript, feedback and state events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// EventSubject returns the subject for an event. Message events carry the
// author as a final token so consumers can filter replies.
func EventSubject(event *model.ChatEvent) string {
	subject := fmt.Sprintf("%s.%s.%s", SubjectPrefix, event.SessionID, event.Type)
	if event.Message != nil && event.Type == model.EventTypeMessage {
		subject += "." + string(event.Message.Author)
	}
	return subject
}

// Publish writes event to the stream and returns its stream sequence.
func (p *EventPublisher) Publish(ctx context.Context, event *model.ChatEvent) (uint64, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.client.JetStream().Publish(ctx, EventSubject(event), data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack.Sequence, nil
}
