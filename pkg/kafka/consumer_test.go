package kafka

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

func message(t *testing.T, eventType, aggregateID string) kafka.Message {
	t.Helper()
	event, err := NewEvent(eventType, aggregateID, "product", "shop-service", nil)
	require.NoError(t, err)
	data, err := event.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: "shop.dlq.product-index", Value: data}
}

func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-r.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	cancel()
	require.NoError(t, <-done)
	assert.True(t, r.closed)
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	r := newFakeReader(message(t, "index.failed", "1"), message(t, "index.failed", "2"))
	var seen []string
	c := NewConsumerWithReader(r, ConsumerConfig{Topic: "t", GroupID: "g"}, func(_ context.Context, e *Event) error {
		seen = append(seen, e.AggregateID)
		return nil
	}, logger.Discard())

	runUntilDrained(t, c, r)

	assert.Equal(t, []string{"1", "2"}, seen)
	assert.Len(t, r.committed, 2)
}

func TestConsumer_RetriesThenSkips(t *testing.T) {
	r := newFakeReader(message(t, "index.failed", "5"))
	var calls atomic.Int32
	c := NewConsumerWithReader(r, ConsumerConfig{Topic: "t", GroupID: "g", MaxRetries: 3, RetryDelay: time.Millisecond},
		func(context.Context, *Event) error {
			calls.Add(1)
			return errors.New("still failing")
		}, logger.Discard())

	runUntilDrained(t, c, r)

	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, r.committed, 1)
}

func TestConsumer_UndecodableMessageIsCommitted(t *testing.T) {
	r := newFakeReader(kafka.Message{Value: []byte("not json")})
	called := false
	c := NewConsumerWithReader(r, ConsumerConfig{Topic: "t", GroupID: "g"}, func(context.Context, *Event) error {
		called = true
		return nil
	}, logger.Discard())

	runUntilDrained(t, c, r)

	assert.False(t, called)
	assert.Len(t, r.committed, 1)
}
