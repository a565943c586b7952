// Package chatbot implements the portal's rule-based chat assistant: a
// keyword resolver over an ordered knowledge base and the per-widget
// conversation session that drives it.
package chatbot

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Built-in topic keys reported for responses that did not come from a topic.
const (
	TopicGreeting  = "greeting"
	TopicGratitude = "gratitude"
	TopicFallback  = "fallback"
)

// Response is a canned answer and the quick replies offered after it.
type Response struct {
	Topic       string   `yaml:"-" json:"topic"`
	Text        string   `yaml:"text" json:"text"`
	Suggestions []string `yaml:"suggestions,omitempty" json:"suggestions,omitempty"`
}

// Topic maps a canonical key to its synonyms and response.
type Topic struct {
	Key      string   `yaml:"key" json:"key"`
	Synonyms []string `yaml:"synonyms" json:"synonyms"`
	Response Response `yaml:"response" json:"response"`
}

// KnowledgeBase is the immutable keyword map and response table. Topics
// keep their registration order.
type KnowledgeBase struct {
	Greeting           string   `yaml:"greeting" json:"greeting"`
	DefaultSuggestions []string `yaml:"default_suggestions" json:"default_suggestions"`
	Topics             []Topic  `yaml:"topics" json:"topics"`
	GreetingReply      Response `yaml:"greeting_reply" json:"greeting_reply"`
	GratitudeReply     Response `yaml:"gratitude_reply" json:"gratitude_reply"`
	FallbackReply      Response `yaml:"fallback_reply" json:"fallback_reply"`
}

// DefaultKnowledgeBase returns the knowledge base compiled into the binary.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := ParseKnowledgeBase(defaultKnowledge)
	if err != nil {
		panic(fmt.Sprintf("chatbot: embedded knowledge base: %v", err))
	}
	return kb
}

// LoadKnowledgeBase reads a knowledge base from a YAML file. An empty path
// yields the embedded default.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	if path == "" {
		return DefaultKnowledgeBase(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return ParseKnowledgeBase(data)
}

// ParseKnowledgeBase decodes and validates a YAML knowledge base. Synonyms
// are lowercased so matching only has to normalize the utterance.
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("decode knowledge base: %w", err)
	}
	if err := kb.normalize(); err != nil {
		return nil, err
	}
	return &kb, nil
}

func (kb *KnowledgeBase) normalize() error {
	if strings.TrimSpace(kb.Greeting) == "" {
		return errors.New("knowledge base: greeting is required")
	}
	if len(kb.DefaultSuggestions) == 0 {
		return errors.New("knowledge base: default_suggestions is required")
	}

	seen := make(map[string]bool, len(kb.Topics))
	for i := range kb.Topics {
		t := &kb.Topics[i]
		t.Key = strings.TrimSpace(t.Key)
		if t.Key == "" {
			return fmt.Errorf("knowledge base: topic %d has no key", i)
		}
		switch t.Key {
		case TopicGreeting, TopicGratitude, TopicFallback:
			return fmt.Errorf("knowledge base: topic key %q is reserved", t.Key)
		}
		if seen[t.Key] {
			return fmt.Errorf("knowledge base: duplicate topic %q", t.Key)
		}
		seen[t.Key] = true

		if len(t.Synonyms) == 0 {
			return fmt.Errorf("knowledge base: topic %q has no synonyms", t.Key)
		}
		for j, s := range t.Synonyms {
			s = strings.ToLower(strings.TrimSpace(s))
			// An empty synonym would match every utterance.
			if s == "" {
				return fmt.Errorf("knowledge base: topic %q has an empty synonym", t.Key)
			}
			t.Synonyms[j] = s
		}
		if strings.TrimSpace(t.Response.Text) == "" {
			return fmt.Errorf("knowledge base: topic %q has no response text", t.Key)
		}
		t.Response.Topic = t.Key
	}

	for name, r := range map[string]*Response{
		TopicGreeting:  &kb.GreetingReply,
		TopicGratitude: &kb.GratitudeReply,
		TopicFallback:  &kb.FallbackReply,
	} {
		if strings.TrimSpace(r.Text) == "" {
			return fmt.Errorf("knowledge base: %s reply text is required", name)
		}
		r.Topic = name
	}
	if len(kb.FallbackReply.Suggestions) == 0 {
		kb.FallbackReply.Suggestions = kb.DefaultSuggestions
	}
	return nil
}
