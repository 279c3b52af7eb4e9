package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessage(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	event := NewEvent(EventResultSubmitted, ResultSubmittedEvent{ResultID: "r-1", ScorePercentage: 67}, at)

	msg, err := toMessage(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "result.submitted", msg.Metadata.Get("event_type"))
	assert.Equal(t, "exercise-service", msg.Metadata.Get("source"))
	assert.Equal(t, "2025-03-01T02:00:00Z", msg.Metadata.Get("timestamp"))

	var decoded struct {
		Type EventType      `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	assert.Equal(t, EventResultSubmitted, decoded.Type)
	assert.Equal(t, "r-1", decoded.Data["result_id"])
	assert.EqualValues(t, 67, decoded.Data["score_percentage"])
}

func TestMockEventPublisher(t *testing.T) {
	m := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, NewEvent(EventSessionStarted, SessionStartedEvent{SessionID: "s"}, time.Now())))
	require.NoError(t, m.Publish(ctx, NewEvent(EventResultSubmitted, ResultSubmittedEvent{ResultID: "r"}, time.Now())))

	assert.Len(t, m.GetPublishedEvents(), 2)
	assert.Len(t, m.EventsOfType(EventResultSubmitted), 1)

	m.ClearEvents()
	assert.Empty(t, m.GetPublishedEvents())
}
