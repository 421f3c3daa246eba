package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/config"
	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tokyo := "Tokyo"
	event := domain.TurnEvent{
		ID:                 "evt-1",
		SessionID:          "session-1",
		UserMessage:        "What should I pack for Tokyo?",
		Reply:              "Bring layers.",
		DataSources:        domain.DataSources{Weather: true, Location: &tokyo},
		ConversationLength: 2,
		CompletedAt:        now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("session-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"user_message":"What should I pack for Tokyo?"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("turn_completed"), msg.Headers[0].Value)
	assert.Equal(t, "completed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.TurnEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.NotNil(t, decoded.DataSources.Location)
	assert.Equal(t, "Tokyo", *decoded.DataSources.Location)
	assert.True(t, decoded.CompletedAt.Equal(now))
}

func TestSerializeToMessage_NoLocation(t *testing.T) {
	msg, err := serializeToMessage(domain.TurnEvent{ID: "evt-2", SessionID: "default"})
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"location":null`)
}

func TestNewWriter_UsesTurnsTopic(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTurnsTopic: "turns"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "turns", w.writer.Topic)
}
