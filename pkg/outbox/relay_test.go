package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type fakeProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestRelayDispatchesPendingEvents(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	ctx := context.Background()
	store := NewMemoryStore(3)
	prod := &fakeProducer{}
	relay := NewRelay(discard(), store, NewDispatcher(discard(), prod, "storefront.orders"), "test-relay")

	_, err := store.Append(ctx, Event{
		AggregateType: "order",
		AggregateID:   "s1",
		Type:          "OrderSubmitted",
		Payload:       []byte(`{"total":"46"}`),
		Headers:       map[string]string{"source": "storefront"},
		Traceparent:   "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})
	require.NoError(t, err)

	relay.Tick(ctx)

	require.Len(t, prod.msgs, 1)
	m := prod.msgs[0]
	assert.Equal(t, "storefront.orders", m.Topic)
	assert.Equal(t, "s1", string(m.Key))
	assert.Equal(t, "OrderSubmitted", header(m, "event_type"))
	assert.Equal(t, "storefront", header(m, "source"))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", header(m, "traceparent"))
	assert.Empty(t, store.Unsent())

	relay.Tick(ctx)
	assert.Len(t, prod.msgs, 1, "sent events are not dispatched twice")
}

func TestRelayRetriesThenGivesUp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)
	prod := &fakeProducer{err: errors.New("broker unavailable")}
	relay := NewRelay(discard(), store, NewDispatcher(discard(), prod, "t"), "test-relay")

	_, _ = store.Append(ctx, Event{AggregateID: "s1", Type: "OrderSubmitted"})

	relay.Tick(ctx)
	unsent := store.Unsent()
	require.Len(t, unsent, 1)
	assert.Equal(t, StatusPending, unsent[0].Status)
	assert.Equal(t, 1, unsent[0].RetryCount)
	assert.Equal(t, "broker unavailable", unsent[0].LastError)

	relay.Tick(ctx)
	unsent = store.Unsent()
	require.Len(t, unsent, 1)
	assert.Equal(t, StatusFailed, unsent[0].Status)

	prod.err = nil
	relay.Tick(ctx)
	assert.Empty(t, prod.msgs, "failed events stay parked")
}

func TestMemoryStoreLeaseExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, _ = store.Append(ctx, Event{AggregateID: "a"})
	_, _ = store.Append(ctx, Event{AggregateID: "b"})

	batch, err := store.LockBatch(ctx, "r1", 1, time.Second)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "a", batch[0].AggregateID)

	batch, _ = store.LockBatch(ctx, "r2", 10, time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, "b", batch[0].AggregateID)

	now = now.Add(2 * time.Second)
	batch, _ = store.LockBatch(ctx, "r2", 10, time.Second)
	assert.Len(t, batch, 2, "expired leases are handed out again")
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	store := NewMemoryStore(1)
	relay := NewRelay(discard(), store, NewDispatcher(discard(), &fakeProducer{}, "t"), "test-relay")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRelayRunDrainsOnTunedInterval(t *testing.T) {
	store := NewMemoryStore(1)
	relay := NewRelay(discard(), store, NewDispatcher(discard(), &fakeProducer{}, "t"), "test-relay").
		Tune(1, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, Event{AggregateID: "s1", Type: "OrderSubmitted"})
		require.NoError(t, err)
	}

	go func() { _ = relay.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(store.Unsent()) == 0 }, 2*time.Second, 10*time.Millisecond)
}
