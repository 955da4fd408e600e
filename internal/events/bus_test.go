package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	bus, err := NewBus(4)
	require.NoError(t, err)
	defer bus.Close()

	var placed, low int32
	require.NoError(t, bus.Subscribe(TopicOrderPlaced, func(e Event) { atomic.AddInt32(&placed, 1) }))
	require.NoError(t, bus.Subscribe(TopicStockLow, func(e Event) { atomic.AddInt32(&low, 1) }))

	bus.Publish(
		New(TopicOrderPlaced, "1", OrderPlaced{OrderID: 1}),
		New(TopicOrderPlaced, "2", OrderPlaced{OrderID: 2}),
		New(TopicStockLow, "3", StockLow{ProductID: 3}),
		New(TopicOrderResponded, "4", OrderResponded{OrderID: 4}),
	)
	bus.Wait()

	assert.EqualValues(t, 2, atomic.LoadInt32(&placed))
	assert.EqualValues(t, 1, atomic.LoadInt32(&low))
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() { bus.Publish(New(TopicStockLow, "1", nil)) })
}

type fakeProducer struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (f *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaSinkForwardsEvents(t *testing.T) {
	bus, err := NewBus(2)
	require.NoError(t, err)
	defer bus.Close()

	producer := &fakeProducer{}
	sink := NewKafkaSink(producer)
	require.NoError(t, sink.Attach(bus))

	bus.Publish(New(TopicOrderResponded, "42", OrderResponded{OrderID: 42, Status: "ACCEPTED"}))
	bus.Wait()

	producer.mu.Lock()
	defer producer.mu.Unlock()
	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Contains(t, string(msg.Value), `"topic":"order.responded"`)
	assert.Contains(t, string(msg.Value), `"order_id":"42"`)
	assert.Equal(t, "order.responded", string(msg.Headers[0].Value))
}

func TestKafkaSinkSwallowsWriteErrors(t *testing.T) {
	sink := NewKafkaSink(&fakeProducer{err: errors.New("broker down")})
	assert.NotPanics(t, func() { sink.Handle(New(TopicStockLow, "1", StockLow{})) })
}
