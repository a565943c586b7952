// Package service provides business logic for the portal.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/eduworld/portal/internal/chatbot"
	"github.com/eduworld/portal/internal/middleware"
	"github.com/eduworld/portal/internal/model"
	"github.com/eduworld/portal/pkg/logger"
	"github.com/eduworld/portal/pkg/metrics"
	"github.com/eduworld/portal/pkg/tracing"
)

// ErrSessionNotFound is returned for unknown or expired widget sessions.
var ErrSessionNotFound = errors.New("chat session not found")

// EventPublisher receives chat events for the analytics feed.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.ChatEvent) (uint64, error)
}

// defaultEventBuffer bounds the chat events waiting to be published.
const defaultEventBuffer = 256

// defaultSweepPeriod is used when Run is given a non-positive period.
const defaultSweepPeriod = time.Minute

// ChatConfig configures the sessions created by ChatService.
type ChatConfig struct {
	TypingDelay func() time.Duration
	StalePolicy chatbot.StalePolicy
	Scheduler   chatbot.Scheduler
	IdleTTL     time.Duration
	EventBuffer int
}

// ChatService owns the live chat widget sessions.
type ChatService struct {
	resolver  *chatbot.Resolver
	publisher EventPublisher
	logger    *logger.Logger
	tracer    trace.Tracer
	cfg       ChatConfig
	now       func() time.Time

	sessions map[string]*chatbot.Session
	mu       sync.RWMutex

	// events feeds publishLoop; nil without a publisher.
	events   chan model.ChatEvent
	stop     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewChatService creates a chat service. publisher may be nil; otherwise
// events are published from a background goroutine until Shutdown.
func NewChatService(resolver *chatbot.Resolver, publisher EventPublisher, log *logger.Logger, cfg ChatConfig) *ChatService {
	if cfg.TypingDelay == nil {
		cfg.TypingDelay = chatbot.RandomDelay(chatbot.DefaultTypingDelayMin, chatbot.DefaultTypingDelayMax)
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = chatbot.RealScheduler
	}
	if cfg.StalePolicy == "" {
		cfg.StalePolicy = chatbot.StaleDeliver
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	s := &ChatService{
		resolver:  resolver,
		publisher: publisher,
		logger:    log,
		tracer:    tracing.Tracer("github.com/eduworld/portal/internal/service"),
		cfg:       cfg,
		now:       time.Now,
		sessions:  make(map[string]*chatbot.Session),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	if publisher != nil {
		s.events = make(chan model.ChatEvent, cfg.EventBuffer)
		go s.publishLoop()
	} else {
		close(s.stopped)
	}
	return s
}

// Create starts a new, closed widget session.
func (s *ChatService) Create(ctx context.Context) model.SessionSnapshot {
	sess := chatbot.NewSession(s.resolver,
		chatbot.WithScheduler(s.cfg.Scheduler),
		chatbot.WithTypingDelay(s.cfg.TypingDelay),
		chatbot.WithStalePolicy(s.cfg.StalePolicy),
		chatbot.WithClock(s.now),
		chatbot.WithListener(s.onEvent),
	)

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	metrics.IncrementChatSessions()
	s.logger.Debug("chat session created", zap.String("session_id", sess.ID()))

	return sess.Snapshot()
}

// Snapshot returns the current view of a session.
func (s *ChatService) Snapshot(ctx context.Context, id string) (model.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return model.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Open shows the widget.
func (s *ChatService) Open(ctx context.Context, id string) (model.SessionSnapshot, error) {
	return s.apply(id, (*chatbot.Session).Open)
}

// Minimize collapses the widget.
func (s *ChatService) Minimize(ctx context.Context, id string) (model.SessionSnapshot, error) {
	return s.apply(id, (*chatbot.Session).Minimize)
}

// Restore expands a minimized widget.
func (s *ChatService) Restore(ctx context.Context, id string) (model.SessionSnapshot, error) {
	return s.apply(id, (*chatbot.Session).Restore)
}

// Close hides the widget.
func (s *ChatService) Close(ctx context.Context, id string) (model.SessionSnapshot, error) {
	return s.apply(id, (*chatbot.Session).Close)
}

// Reset clears the transcript back to the greeting.
func (s *ChatService) Reset(ctx context.Context, id string) (model.SessionSnapshot, error) {
	return s.apply(id, (*chatbot.Session).Reset)
}

// SetDraft updates the widget input buffer.
func (s *ChatService) SetDraft(ctx context.Context, id, text string) (model.SessionSnapshot, error) {
	return s.apply(id, func(sess *chatbot.Session) error {
		return sess.SetDraft(text)
	})
}

// Submit sends a user utterance. The assistant reply arrives after the
// typing delay; the returned snapshot shows the session while typing.
func (s *ChatService) Submit(ctx context.Context, id, text string) (model.SessionSnapshot, error) {
	return s.submit(ctx, id, func(sess *chatbot.Session) (model.Message, error) {
		return sess.Submit(text)
	})
}

// SubmitDraft sends the session's input buffer.
func (s *ChatService) SubmitDraft(ctx context.Context, id string) (model.SessionSnapshot, error) {
	return s.submit(ctx, id, func(sess *chatbot.Session) (model.Message, error) {
		return sess.SubmitDraft()
	})
}

func (s *ChatService) submit(ctx context.Context, id string, send func(*chatbot.Session) (model.Message, error)) (model.SessionSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "chat.submit", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	log := s.logger.WithSession(middleware.GetCorrelationID(ctx), id)
	snap, err := s.apply(id, func(sess *chatbot.Session) error {
		msg, err := send(sess)
		if err == nil {
			span.SetAttributes(attribute.String("message.id", msg.ID))
			log.Debug("utterance accepted", zap.String("message_id", msg.ID), zap.Int("length", len(msg.Text)))
		}
		return err
	})
	if err != nil && !errors.Is(err, chatbot.ErrEmptyInput) {
		span.RecordError(err)
	}
	return snap, err
}

// Rate records feedback on an assistant message.
func (s *ChatService) Rate(ctx context.Context, id, messageID, value string) (model.SessionSnapshot, error) {
	feedback, err := model.ParseFeedback(value)
	if err != nil {
		return model.SessionSnapshot{}, err
	}
	return s.apply(id, func(sess *chatbot.Session) error {
		return sess.Rate(messageID, feedback)
	})
}

// Delete discards a session and its pending replies.
func (s *ChatService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.Discard()
	metrics.DecrementChatSessions()
	return nil
}

// Len returns the number of live sessions.
func (s *ChatService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepIdle discards sessions untouched for longer than the idle TTL and
// returns how many were removed.
func (s *ChatService) SweepIdle() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.IdleTTL)

	s.mu.Lock()
	var expired []*chatbot.Session
	for id, sess := range s.sessions {
		if sess.UpdatedAt().Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Discard()
		metrics.DecrementChatSessions()
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle chat sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions every period until ctx is done, then discards
// every remaining session.
func (s *ChatService) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = defaultSweepPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.discardAll()
			s.Shutdown()
			return
		case <-ticker.C:
			s.SweepIdle()
		}
	}
}

func (s *ChatService) discardAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*chatbot.Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Discard()
		metrics.DecrementChatSessions()
	}
}

func (s *ChatService) get(id string) (*chatbot.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *ChatService) apply(id string, op func(*chatbot.Session) error) (model.SessionSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return model.SessionSnapshot{}, err
	}
	err = op(sess)
	return sess.Snapshot(), err
}

// onEvent runs on the goroutine that changed the session, which is the
// timer goroutine for assistant replies.
func (s *ChatService) onEvent(ev model.ChatEvent) {
	switch ev.Type {
	case model.EventTypeMessage:
		metrics.RecordChatMessage(string(ev.Message.Author), ev.Message.Topic)
		if ms, ok := ev.Metadata["typing_delay_ms"].(int64); ok {
			metrics.ChatTypingDelay.Observe(float64(ms) / 1000)
		}
	case model.EventTypeFeedback:
		metrics.RecordFeedback(ev.Message.Topic, string(ev.Message.Feedback))
	}

	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	case <-s.stop:
	default:
		metrics.ChatEventsPublishFailures.Inc()
		s.logger.Warn("chat event buffer full, dropping event",
			zap.String("session_id", ev.SessionID),
			zap.String("type", string(ev.Type)),
		)
	}
}

// Shutdown stops the publisher goroutine after it has published the events
// already queued. It is safe to call more than once.
func (s *ChatService) Shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.stopped
}

func (s *ChatService) publishLoop() {
	defer close(s.stopped)
	for {
		select {
		case ev := <-s.events:
			s.publish(ev)
		case <-s.stop:
			for {
				select {
				case ev := <-s.events:
					s.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (s *ChatService) publish(ev model.ChatEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := s.publisher.Publish(ctx, &ev); err != nil {
		metrics.ChatEventsPublishFailures.Inc()
		s.logger.Warn("failed to publish chat event",
			zap.String("session_id", ev.SessionID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
