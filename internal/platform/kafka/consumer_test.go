package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func testConsumer(opts ...ConsumerOption) *Consumer {
	opts = append([]ConsumerOption{WithConsumerLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return newConsumer(nil, opts...)
}

func TestToMessage(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	msg := toMessage(&kgo.Record{
		Topic:     "alyra.voting.events",
		Partition: 2,
		Offset:    41,
		Key:       []byte("ballot-1"),
		Value:     []byte(`{}`),
		Headers:   []kgo.RecordHeader{{Key: "event_type", Value: []byte("voted")}},
		Timestamp: ts,
	})

	assert.Equal(t, "alyra.voting.events", msg.Topic)
	assert.Equal(t, int32(2), msg.Partition)
	assert.Equal(t, int64(41), msg.Offset)
	assert.Equal(t, "ballot-1", string(msg.Key))
	assert.Equal(t, map[string]string{"event_type": "voted"}, msg.Headers)
	assert.Equal(t, ts, msg.Timestamp)
}

func TestHandleRetriesThenSucceeds(t *testing.T) {
	c := testConsumer(WithRetry(3, time.Millisecond))
	calls := 0
	err := c.handle(context.Background(), HandlerFunc(func(context.Context, *Message) error {
		calls++
		if calls < 3 {
			return errors.New("archive unavailable")
		}
		return nil
	}), &Message{Topic: "t"})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestHandleGivesUp(t *testing.T) {
	c := testConsumer(WithRetry(2, time.Millisecond))
	cause := errors.New("archive unavailable")
	calls := 0
	err := c.handle(context.Background(), HandlerFunc(func(context.Context, *Message) error {
		calls++
		return cause
	}), &Message{Topic: "t", Partition: 1, Offset: 7})

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "t/1@7")
	assert.Equal(t, 2, calls)
}

func TestHandleStopsOnCancel(t *testing.T) {
	c := testConsumer(WithRetry(5, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	err := c.handle(ctx, HandlerFunc(func(context.Context, *Message) error {
		cancel()
		return errors.New("archive unavailable")
	}), &Message{})

	assert.ErrorIs(t, err, context.Canceled)
}
