package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordChatMessage(t *testing.T) {
	users := testutil.ToFloat64(ChatMessagesTotal.WithLabelValues("user"))
	assistant := testutil.ToFloat64(ChatMessagesTotal.WithLabelValues("assistant"))
	fees := testutil.ToFloat64(ChatTopicResolutions.WithLabelValues("fees"))

	RecordChatMessage("user", "")
	RecordChatMessage("assistant", "fees")

	assert.Equal(t, users+1, testutil.ToFloat64(ChatMessagesTotal.WithLabelValues("user")))
	assert.Equal(t, assistant+1, testutil.ToFloat64(ChatMessagesTotal.WithLabelValues("assistant")))
	assert.Equal(t, fees+1, testutil.ToFloat64(ChatTopicResolutions.WithLabelValues("fees")))
}

func TestRecordFeedback(t *testing.T) {
	before := testutil.ToFloat64(ChatFeedbackTotal.WithLabelValues("hostel", "negative"))
	RecordFeedback("hostel", "negative")
	assert.Equal(t, before+1, testutil.ToFloat64(ChatFeedbackTotal.WithLabelValues("hostel", "negative")))
}

func TestChatSessionsGauge(t *testing.T) {
	before := testutil.ToFloat64(ChatSessionsActive)
	IncrementChatSessions()
	IncrementChatSessions()
	DecrementChatSessions()
	assert.Equal(t, before+1, testutil.ToFloat64(ChatSessionsActive))
}

func TestRecordRequest(t *testing.T) {
	RecordRequest("GET", "/api/v1/chat/sessions/{id}", "200", 0.01)
	assert.Equal(t, 1, testutil.CollectAndCount(RequestDuration, "api_request_duration_seconds"))
}
