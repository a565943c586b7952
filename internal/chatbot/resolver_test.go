package chatbot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicResponse(t *testing.T, kb *KnowledgeBase, key string) Response {
	t.Helper()
	for _, topic := range kb.Topics {
		if topic.Key == key {
			return topic.Response
		}
	}
	t.Fatalf("topic %q not found", key)
	return Response{}
}

func TestResolve_EverySynonymResolvesToItsTopic(t *testing.T) {
	kb := DefaultKnowledgeBase()
	r := NewResolver(kb)

	for i, topic := range kb.Topics {
		for _, synonym := range topic.Synonyms {
			got := r.Resolve("tell me about " + synonym)

			// An earlier topic may legitimately claim a phrase that also
			// contains one of its own synonyms.
			expected := topic.Response
			for _, earlier := range kb.Topics[:i] {
				if containsAny("tell me about "+synonym, earlier.Synonyms) {
					expected = earlier.Response
					break
				}
			}
			assert.Equal(t, expected.Topic, got.Topic, "synonym %q", synonym)
			assert.Equal(t, expected.Text, got.Text, "synonym %q", synonym)
		}
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestResolve_Precedence(t *testing.T) {
	kb := DefaultKnowledgeBase()
	r := NewResolver(kb)

	tests := []struct {
		name      string
		utterance string
		topic     string
	}{
		{"single topic", "What are the fees?", "fees"},
		{"case insensitive", "TUITION for MBA", "fees"},
		{"earlier topic wins over later", "is there a scholarship to reduce the fee", "fees"},
		{"courses registered before fees", "course fees", "courses"},
		{"topic wins over greeting", "hello, which courses do you offer?", "courses"},
		{"topic wins over gratitude", "thanks, and the hostel?", "hostel"},
		{"greeting", "hello there", TopicGreeting},
		{"greeting wins over gratitude", "hey, thanks!", TopicGreeting},
		{"gratitude", "thanks a lot", TopicGratitude},
		{"gratitude thank you", "Thank you", TopicGratitude},
		{"generic fallback", "xyz", TopicFallback},
		{"empty", "", TopicFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.topic, r.Resolve(tt.utterance).Topic)
		})
	}
}

func TestResolve_BuiltinReplies(t *testing.T) {
	kb := DefaultKnowledgeBase()
	r := NewResolver(kb)

	assert.Equal(t, kb.GreetingReply, r.Resolve("hello there"))
	assert.Equal(t, kb.GratitudeReply, r.Resolve("thanks a lot"))

	fallback := r.Resolve("xyz")
	assert.Equal(t, kb.FallbackReply.Text, fallback.Text)
	assert.Equal(t, kb.DefaultSuggestions, fallback.Suggestions)
}

func TestResolve_FeesMatchesResponseTable(t *testing.T) {
	kb := DefaultKnowledgeBase()
	got := NewResolver(kb).Resolve("What are the fees?")
	assert.Equal(t, topicResponse(t, kb, "fees"), got)
}

func TestParseKnowledgeBase_Validation(t *testing.T) {
	const base = `
greeting: hi
default_suggestions: [a]
greeting_reply: {text: g}
gratitude_reply: {text: t}
fallback_reply: {text: f}
`
	tests := []struct {
		name   string
		topics string
		errMsg string
	}{
		{"missing key", "topics: [{synonyms: [a], response: {text: x}}]", "has no key"},
		{"duplicate key", "topics: [{key: a, synonyms: [a], response: {text: x}}, {key: a, synonyms: [b], response: {text: y}}]", "duplicate topic"},
		{"reserved key", "topics: [{key: greeting, synonyms: [a], response: {text: x}}]", "reserved"},
		{"no synonyms", "topics: [{key: a, response: {text: x}}]", "no synonyms"},
		{"blank synonym", "topics: [{key: a, synonyms: ['  '], response: {text: x}}]", "empty synonym"},
		{"no text", "topics: [{key: a, synonyms: [a]}]", "no response text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKnowledgeBase([]byte(base + tt.topics))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseKnowledgeBase_NormalizesSynonyms(t *testing.T) {
	kb, err := ParseKnowledgeBase([]byte(`
greeting: hi
default_suggestions: [a, b]
topics:
  - key: library
    synonyms: ["  Books "]
    response: {text: open late}
greeting_reply: {text: g}
gratitude_reply: {text: t}
fallback_reply: {text: f}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"books"}, kb.Topics[0].Synonyms)
	assert.Equal(t, "library", kb.Topics[0].Response.Topic)
	assert.Equal(t, []string{"a", "b"}, kb.FallbackReply.Suggestions)
	assert.Equal(t, "library", NewResolver(kb).Resolve("Any BOOKS?").Topic)
}

func TestLoadKnowledgeBase_EmptyPathUsesDefault(t *testing.T) {
	kb, err := LoadKnowledgeBase("")
	require.NoError(t, err)
	assert.NotEmpty(t, kb.Topics)

	_, err = LoadKnowledgeBase("/nonexistent/knowledge.yaml")
	assert.Error(t, err)
}
