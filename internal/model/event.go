package model

import (
	"time"
)

// EventType represents the type of chat analytics event.
type EventType string

const (
	EventTypeMessage  EventType = "message"
	EventTypeFeedback EventType = "feedback"
	EventTypeReset    EventType = "reset"
	EventTypeState    EventType = "state"
)

// ChatEvent is published for every observable change of a widget session.
type ChatEvent struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Type      EventType      `json:"type"`
	Message   *Message       `json:"message,omitempty"`
	State     SessionState   `json:"state,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
