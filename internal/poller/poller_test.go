package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type invalidation struct {
	key     string
	culture string
}

// recordingInvalidator remembers every invalidation
type recordingInvalidator struct {
	mu    sync.Mutex
	calls []invalidation
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, key, culture string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, invalidation{key, culture})
	return r.err
}

func (r *recordingInvalidator) snapshot() []invalidation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]invalidation(nil), r.calls...)
}

func message(t *testing.T, event any) kafkaGo.Message {
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkaGo.Message{Value: value}
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  func(t *testing.T) kafkaGo.Message
		want []invalidation
	}{
		{
			name: "valid event",
			msg: func(t *testing.T) kafkaGo.Message {
				return message(t, SettingsChangedEvent{Key: "Pickup.TodayAvailabilityNote", Culture: "de-DE"})
			},
			want: []invalidation{{"Pickup.TodayAvailabilityNote", "de-DE"}},
		},
		{
			name: "missing culture",
			msg: func(t *testing.T) kafkaGo.Message {
				return message(t, SettingsChangedEvent{Key: "Pickup.TodayAvailabilityNote"})
			},
		},
		{
			name: "malformed payload",
			msg: func(t *testing.T) kafkaGo.Message {
				return kafkaGo.Message{Value: []byte("not json")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := &recordingInvalidator{}
			p := &Poller{notes: notes}

			p.handleMessage(context.Background(), tt.msg(t))

			assert.Equal(t, tt.want, notes.snapshot())
		})
	}
}

func TestHandleMessage_InvalidateErrorIsSwallowed(t *testing.T) {
	notes := &recordingInvalidator{err: errors.New("redis down")}
	p := &Poller{notes: notes}

	assert.NotPanics(t, func() {
		p.handleMessage(context.Background(), message(t, SettingsChangedEvent{Key: "k", Culture: "en-US"}))
	})
	assert.Len(t, notes.snapshot(), 1)
}

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestPoller_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := setupKafka(t)
	createTopic(t, broker, DefaultTopic)

	notes := &recordingInvalidator{}
	poller := NewPoller(notes, DefaultTopic, broker)
	defer poller.Close()

	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(broker),
		Topic:                  DefaultTopic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	payload, err := json.Marshal(SettingsChangedEvent{Key: "Pickup.TransferAvailabilityNote", Culture: "fr-FR"})
	require.NoError(t, err)
	require.NoError(t, w.WriteMessages(ctx, kafkaGo.Message{Key: []byte("Pickup.TransferAvailabilityNote"), Value: payload}))
	require.NoError(t, w.Close())

	go poller.Run(ctx)

	require.Eventually(t, func() bool {
		return len(notes.snapshot()) == 1
	}, 30*time.Second, 500*time.Millisecond)
	assert.Equal(t, invalidation{"Pickup.TransferAvailabilityNote", "fr-FR"}, notes.snapshot()[0])
}
