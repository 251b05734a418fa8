package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func eventMessage(t *testing.T, topic, eventType string) kafka.Message {
	t.Helper()
	event, err := NewEvent(eventType, "agg-1", "cart", "cart-service", map[string]string{"user_id": "u-1"})
	require.NoError(t, err)
	value, err := event.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Value: value}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumer_Process_CommitsOnSuccess(t *testing.T) {
	r := &fakeReader{}
	var seen []string
	c := newConsumer(r, "g", func(_ context.Context, e *Event) error {
		seen = append(seen, e.EventType)
		return nil
	}, quietLogger())

	require.NoError(t, c.process(context.Background(), eventMessage(t, "ecommerce.cart.updated", "cart.updated")))

	assert.Equal(t, []string{"cart.updated"}, seen)
	assert.Equal(t, 1, r.commits())
}

func TestConsumer_Process_RetriesThenSkips(t *testing.T) {
	r := &fakeReader{}
	attempts := 0
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		attempts++
		return errors.New("redis down")
	}, quietLogger())
	c.backoff = time.Millisecond

	require.NoError(t, c.process(context.Background(), eventMessage(t, "ecommerce.cart.updated", "cart.updated")))

	assert.Equal(t, maxHandlerRetries, attempts)
	assert.Equal(t, 1, r.commits(), "poison message must still be committed")
}

func TestConsumer_Process_RecoversOnRetry(t *testing.T) {
	r := &fakeReader{}
	attempts := 0
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}, quietLogger())
	c.backoff = time.Millisecond

	require.NoError(t, c.process(context.Background(), eventMessage(t, "ecommerce.order.created", "order.created")))
	assert.Equal(t, 2, attempts)
}

func TestConsumer_Process_BadPayloadIsCommitted(t *testing.T) {
	r := &fakeReader{}
	called := false
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		called = true
		return nil
	}, quietLogger())

	require.NoError(t, c.process(context.Background(), kafka.Message{Topic: "t", Value: []byte("garbage")}))

	assert.False(t, called)
	assert.Equal(t, 1, r.commits())
}

func TestConsumer_Start_StopsOnCancel(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		eventMessage(t, "ecommerce.cart.updated", "cart.updated"),
		eventMessage(t, "ecommerce.cart.cleared", "cart.cleared"),
	}}

	var mu sync.Mutex
	handled := 0
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return r.commits() == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}

	mu.Lock()
	assert.Equal(t, 2, handled)
	mu.Unlock()
	assert.Equal(t, 1, r.closed)

	// Close stays idempotent.
	require.NoError(t, c.Close())
	assert.Equal(t, 1, r.closed)
}
