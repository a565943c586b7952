// Package model defines data structures for the portal service.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Author identifies who wrote a chat message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Feedback is the rating a user gave an assistant message.
type Feedback string

const (
	FeedbackNone     Feedback = "none"
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

// ParseFeedback accepts the widget's thumbs values ("up", "down") as well
// as the canonical names.
func ParseFeedback(value string) (Feedback, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "up", "positive":
		return FeedbackPositive, nil
	case "down", "negative":
		return FeedbackNegative, nil
	case "none", "":
		return FeedbackNone, nil
	default:
		return "", fmt.Errorf("unknown feedback value %q", value)
	}
}

// Message represents one entry of a widget transcript.
type Message struct {
	ID       string    `json:"id"`
	Author   Author    `json:"author"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
	Feedback Feedback  `json:"feedback"`

	// Topic is the knowledge base topic that produced an assistant message.
	Topic string `json:"topic,omitempty"`
}

// SendMessageRequest is the request to submit a chat utterance.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// DraftRequest updates the widget input buffer.
type DraftRequest struct {
	Text string `json:"text"`
}

// FeedbackRequest rates an assistant message.
type FeedbackRequest struct {
	Value string `json:"value"`
}
