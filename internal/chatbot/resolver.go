package chatbot

import (
	"regexp"
	"strings"
)

var (
	greetingPattern  = regexp.MustCompile(`(?i)(hi|hello|hey)`)
	gratitudePattern = regexp.MustCompile(`(?i)thank(s| you)?`)
)

// Resolver maps user utterances to canned responses.
type Resolver struct {
	kb *KnowledgeBase
}

// NewResolver creates a resolver over kb. kb must not be modified afterwards.
func NewResolver(kb *KnowledgeBase) *Resolver {
	return &Resolver{kb: kb}
}

// KnowledgeBase returns the knowledge base the resolver reads from.
func (r *Resolver) KnowledgeBase() *KnowledgeBase {
	return r.kb
}

// Resolve returns the response for utterance. Topics are tried first in
// registration order and the first topic with a synonym contained in the
// utterance wins; then greetings, then thanks, then the generic reply.
func (r *Resolver) Resolve(utterance string) Response {
	normalized := strings.ToLower(utterance)

	for _, topic := range r.kb.Topics {
		for _, synonym := range topic.Synonyms {
			if strings.Contains(normalized, synonym) {
				return topic.Response
			}
		}
	}

	if greetingPattern.MatchString(normalized) {
		return r.kb.GreetingReply
	}
	if gratitudePattern.MatchString(normalized) {
		return r.kb.GratitudeReply
	}
	return r.kb.FallbackReply
}
