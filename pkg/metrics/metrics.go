// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatSessionsActive tracks live chat widget sessions.
	ChatSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of live chat widget sessions",
		},
	)

	// ChatMessagesTotal tracks transcript messages by author.
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages appended to transcripts",
		},
		[]string{"author"},
	)

	// ChatTopicResolutions tracks which topic answered a user message.
	ChatTopicResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_topic_resolutions_total",
			Help: "Assistant replies by resolved topic",
		},
		[]string{"topic"},
	)

	// ChatFeedbackTotal tracks ratings given to assistant replies.
	ChatFeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_feedback_total",
			Help: "Feedback given to assistant replies",
		},
		[]string{"topic", "feedback"},
	)

	// ChatTypingDelay tracks the simulated typing delay.
	ChatTypingDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_typing_delay_seconds",
			Help:    "Simulated assistant typing delay",
			Buckets: []float64{.5, 1, 1.25, 1.5, 1.75, 2, 3},
		},
	)

	// ChatEventsPublishFailures tracks events that could not be published.
	ChatEventsPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_events_publish_failures_total",
			Help: "Chat events that failed to publish",
		},
	)

	// UsersRegisteredTotal tracks registrations by role.
	UsersRegisteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total portal accounts registered",
		},
		[]string{"role"},
	)

	// LoginsTotal tracks login attempts by outcome.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts",
		},
		[]string{"role", "outcome"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordChatMessage records a transcript message.
func RecordChatMessage(author, topic string) {
	ChatMessagesTotal.WithLabelValues(author).Inc()
	if topic != "" {
		ChatTopicResolutions.WithLabelValues(topic).Inc()
	}
}

// RecordFeedback records a rating of an assistant reply.
func RecordFeedback(topic, feedback string) {
	ChatFeedbackTotal.WithLabelValues(topic, feedback).Inc()
}

// IncrementChatSessions increments the live session count.
func IncrementChatSessions() {
	ChatSessionsActive.Inc()
}

// DecrementChatSessions decrements the live session count.
func DecrementChatSessions() {
	ChatSessionsActive.Dec()
}
