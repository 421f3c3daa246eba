//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/adapter/kafka"
	"github.com/couchcryptid/travel-assistant/internal/chat"
	"github.com/couchcryptid/travel-assistant/internal/config"
	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/couchcryptid/travel-assistant/internal/observability"
	"github.com/couchcryptid/travel-assistant/internal/weather"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTurnsTopic = "test-turns"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type stubModel struct{}

func (stubModel) Complete(_ context.Context, _ string, messages []domain.Turn) (string, error) {
	return fmt.Sprintf("reply to %d messages", len(messages)), nil
}

type noGeocoder struct{}

func (noGeocoder) ForwardGeocode(context.Context, string) (domain.GeocodingResult, bool, error) {
	return domain.GeocodingResult{}, false, nil
}

type noForecaster struct{}

func (noForecaster) Forecast(context.Context, float64, float64) (domain.CurrentConditions, []domain.DailyForecast, error) {
	return domain.CurrentConditions{}, nil, nil
}

// TestTurnEventsPublished runs chat turns through the service with the Kafka
// writer attached and reads the resulting events back from the topic.
func TestTurnEventsPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTurnsTopic)

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaTurnsTopic: testTurnsTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	gw := weather.NewGateway(noGeocoder{}, noForecaster{}, weather.NewCache(0, 0, nil), nil, discardLogger(), metrics)
	svc := chat.NewService(stubModel{}, gw, chat.NewSessionStore(nil, 0), discardLogger(), metrics, chat.Options{
		Publisher: writer,
	})

	_, err := svc.ProcessTurn(ctx, "session-a", "Hello there")
	require.NoError(t, err)
	_, err = svc.ProcessTurn(ctx, "session-a", "Any museum tips?")
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTurnsTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var events []domain.TurnEvent
	for len(events) < 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from turns topic")

		assert.Equal(t, "session-a", string(msg.Key))
		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "turn_completed", headers["event_type"])
		_, err = time.Parse(time.RFC3339, headers["completed_at"])
		assert.NoError(t, err, "completed_at should be valid RFC3339")

		var event domain.TurnEvent
		require.NoError(t, json.Unmarshal(msg.Value, &event))
		events = append(events, event)
	}

	assert.Equal(t, "Hello there", events[0].UserMessage)
	assert.Equal(t, 2, events[0].ConversationLength)
	assert.Equal(t, "Any museum tips?", events[1].UserMessage)
	assert.Equal(t, 4, events[1].ConversationLength)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}
