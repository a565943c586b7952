package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eduworld/portal/internal/model"
)

func TestEventSubject(t *testing.T) {
	tests := []struct {
		name     string
		event    model.ChatEvent
		expected string
	}{
		{
			name:     "user message",
			event:    model.ChatEvent{SessionID: "s1", Type: model.EventTypeMessage, Message: &model.Message{Author: model.AuthorUser}},
			expected: "chat.s1.message.user",
		},
		{
			name:     "assistant message",
			event:    model.ChatEvent{SessionID: "s1", Type: model.EventTypeMessage, Message: &model.Message{Author: model.AuthorAssistant}},
			expected: "chat.s1.message.assistant",
		},
		{
			name:     "feedback",
			event:    model.ChatEvent{SessionID: "s1", Type: model.EventTypeFeedback, Message: &model.Message{Author: model.AuthorAssistant}},
			expected: "chat.s1.feedback",
		},
		{
			name:     "reset",
			event:    model.ChatEvent{SessionID: "s1", Type: model.EventTypeReset},
			expected: "chat.s1.reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EventSubject(&tt.event))
		})
	}
}

func TestUserKey(t *testing.T) {
	key := UserKey(" Ada@EduWorld.edu")
	assert.Equal(t, UserKey("ada@eduworld.edu"), key)
	assert.Regexp(t, `^email\.[0-9a-f]{64}$`, key)
	assert.NotEqual(t, UserKey("grace@eduworld.edu"), key)
}

func TestClientNilSafe(t *testing.T) {
	var c *Client
	assert.False(t, c.IsConnected())
	c.Close()
}
