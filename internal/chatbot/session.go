package chatbot

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eduworld/portal/internal/model"
)

var (
	// ErrEmptyInput is returned when a blank utterance is submitted.
	ErrEmptyInput = errors.New("chatbot: empty input")
	// ErrUnknownMessage is returned when rating a message that does not
	// exist or was not written by the assistant.
	ErrUnknownMessage = errors.New("chatbot: unknown message")
	// ErrInvalidTransition is returned for a state change the widget does
	// not allow from its current state.
	ErrInvalidTransition = errors.New("chatbot: invalid state transition")
	// ErrNotOpen is returned for operations that need a visible widget.
	ErrNotOpen = errors.New("chatbot: session is not open")
)

// StalePolicy decides what happens to a typing episode that is still
// pending when the session is reset or closed.
type StalePolicy string

const (
	// StaleDeliver appends the late response to the live session.
	StaleDeliver StalePolicy = "deliver"
	// StaleDrop cancels pending episodes on reset and close.
	StaleDrop StalePolicy = "drop"
)

// ParseStalePolicy returns the policy named by s, defaulting to StaleDeliver.
func ParseStalePolicy(s string) StalePolicy {
	if StalePolicy(strings.ToLower(strings.TrimSpace(s))) == StaleDrop {
		return StaleDrop
	}
	return StaleDeliver
}

// Listener receives session events after the session lock is released.
type Listener func(model.ChatEvent)

// Option configures a Session.
type Option func(*Session)

// WithID sets the session identifier.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithScheduler replaces the timer source.
func WithScheduler(sched Scheduler) Option {
	return func(s *Session) { s.scheduler = sched }
}

// WithTypingDelay replaces the typing delay source.
func WithTypingDelay(delay func() time.Duration) Option {
	return func(s *Session) { s.delay = delay }
}

// WithClock replaces the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithStalePolicy sets the stale response policy.
func WithStalePolicy(p StalePolicy) Option {
	return func(s *Session) { s.policy = p }
}

// WithListener registers a listener for session events.
func WithListener(l Listener) Option {
	return func(s *Session) { s.listeners = append(s.listeners, l) }
}

// Session is the state of one chat widget: its visibility, transcript,
// quick replies, input buffer and outstanding typing episodes.
type Session struct {
	mu sync.Mutex

	id        string
	resolver  *Resolver
	scheduler Scheduler
	delay     func() time.Duration
	now       func() time.Time
	policy    StalePolicy
	listeners []Listener

	state       model.SessionState
	messages    []model.Message
	suggestions []string
	draft       string
	updatedAt   time.Time

	// pending holds the typing episodes that have not delivered yet.
	pending    map[uint64]Timer
	nextTask   uint64
	generation uint64
	discarded  bool
}

// NewSession creates a closed session holding the greeting message and the
// default quick replies.
func NewSession(resolver *Resolver, opts ...Option) *Session {
	s := &Session{
		resolver:  resolver,
		scheduler: RealScheduler,
		delay:     RandomDelay(DefaultTypingDelayMin, DefaultTypingDelayMax),
		now:       time.Now,
		policy:    StaleDeliver,
		state:     model.SessionClosed,
		pending:   make(map[uint64]Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.restart()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Open shows a closed widget.
func (s *Session) Open() error {
	return s.transition(model.SessionOpen, model.SessionClosed)
}

// Minimize collapses an open widget.
func (s *Session) Minimize() error {
	return s.transition(model.SessionMinimized, model.SessionOpen)
}

// Restore expands a minimized widget.
func (s *Session) Restore() error {
	return s.transition(model.SessionOpen, model.SessionMinimized)
}

// Close hides an open or minimized widget. The transcript is kept.
func (s *Session) Close() error {
	return s.transition(model.SessionClosed, model.SessionOpen, model.SessionMinimized)
}

func (s *Session) transition(to model.SessionState, from ...model.SessionState) error {
	s.mu.Lock()
	allowed := false
	for _, f := range from {
		if s.state == f {
			allowed = true
			break
		}
	}
	if !allowed {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.state = to
	if to == model.SessionClosed && s.policy == StaleDrop {
		s.cancelPendingLocked()
	}
	s.updatedAt = s.now()
	ev := s.eventLocked(model.EventTypeState, nil)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// SetDraft replaces the widget input buffer.
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.SessionOpen {
		return ErrNotOpen
	}
	s.draft = text
	s.updatedAt = s.now()
	return nil
}

// Submit appends a user message and schedules the assistant's reply after
// the typing delay. Blank text is rejected with ErrEmptyInput.
func (s *Session) Submit(text string) (model.Message, error) {
	s.mu.Lock()
	if s.state != model.SessionOpen {
		s.mu.Unlock()
		return model.Message{}, ErrNotOpen
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return model.Message{}, ErrEmptyInput
	}

	msg := s.newMessageLocked(model.AuthorUser, text)
	s.messages = append(s.messages, msg)
	s.draft = ""

	task := s.nextTask
	s.nextTask++
	gen := s.generation
	delay := s.delay()
	s.pending[task] = s.scheduler.AfterFunc(delay, func() {
		s.deliver(task, gen, text)
	})

	ev := s.eventLocked(model.EventTypeMessage, &msg)
	ev.Metadata = map[string]any{"typing_delay_ms": delay.Milliseconds()}
	s.mu.Unlock()

	s.emit(ev)
	return msg, nil
}

// SubmitDraft submits the current input buffer.
func (s *Session) SubmitDraft() (model.Message, error) {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()
	return s.Submit(draft)
}

func (s *Session) deliver(task, gen uint64, text string) {
	s.mu.Lock()
	delete(s.pending, task)
	if s.discarded || (s.policy == StaleDrop && gen != s.generation) {
		s.mu.Unlock()
		return
	}

	resp := s.resolver.Resolve(text)
	msg := s.newMessageLocked(model.AuthorAssistant, resp.Text)
	msg.Topic = resp.Topic
	s.messages = append(s.messages, msg)
	if len(resp.Suggestions) > 0 {
		s.suggestions = resp.Suggestions
	} else {
		s.suggestions = s.resolver.KnowledgeBase().DefaultSuggestions
	}

	ev := s.eventLocked(model.EventTypeMessage, &msg)
	s.mu.Unlock()

	s.emit(ev)
}

// Rate sets the feedback of an assistant message. Unknown ids and user
// messages yield ErrUnknownMessage and change nothing.
func (s *Session) Rate(messageID string, feedback model.Feedback) error {
	s.mu.Lock()
	if s.state != model.SessionOpen {
		s.mu.Unlock()
		return ErrNotOpen
	}
	for i := range s.messages {
		m := &s.messages[i]
		if m.ID != messageID {
			continue
		}
		if m.Author != model.AuthorAssistant {
			break
		}
		m.Feedback = feedback
		s.updatedAt = s.now()
		rated := *m
		ev := s.eventLocked(model.EventTypeFeedback, &rated)
		s.mu.Unlock()

		s.emit(ev)
		return nil
	}
	s.mu.Unlock()
	return ErrUnknownMessage
}

// Reset discards the transcript and quick replies and starts over from the
// greeting. It is allowed while the widget is open or minimized.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.state == model.SessionClosed {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if s.policy == StaleDrop {
		s.cancelPendingLocked()
	}
	s.restart()
	ev := s.eventLocked(model.EventTypeReset, nil)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Discard stops every outstanding typing episode regardless of policy. The
// session must not be used afterwards.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discarded = true
	s.cancelPendingLocked()
}

// Snapshot returns a copy of the session as the widget displays it.
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]model.Message, len(s.messages))
	copy(messages, s.messages)
	return model.SessionSnapshot{
		ID:          s.id,
		State:       s.state,
		Typing:      len(s.pending) > 0,
		Messages:    messages,
		Suggestions: Present(s.suggestions, s.resolver.KnowledgeBase().DefaultSuggestions),
		Draft:       s.draft,
		UpdatedAt:   s.updatedAt,
	}
}

// UpdatedAt returns the time of the last change made through the session.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// restart must be called with s.mu held (or before s is shared).
func (s *Session) restart() {
	kb := s.resolver.KnowledgeBase()
	s.messages = []model.Message{s.newMessageLocked(model.AuthorAssistant, kb.Greeting)}
	s.suggestions = kb.DefaultSuggestions
	s.updatedAt = s.now()
}

func (s *Session) cancelPendingLocked() {
	s.generation++
	for task, t := range s.pending {
		t.Stop()
		delete(s.pending, task)
	}
}

func (s *Session) newMessageLocked(author model.Author, text string) model.Message {
	now := s.now()
	s.updatedAt = now
	return model.Message{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Author:   author,
		Text:     text,
		SentAt:   now,
		Feedback: model.FeedbackNone,
	}
}

func (s *Session) eventLocked(typ model.EventType, msg *model.Message) model.ChatEvent {
	return model.ChatEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: s.id,
		Type:      typ,
		Message:   msg,
		State:     s.state,
		CreatedAt: s.now(),
	}
}

func (s *Session) emit(ev model.ChatEvent) {
	for _, l := range s.listeners {
		l(ev)
	}
}
