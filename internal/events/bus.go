package events

import (
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Bus publishes events to subscribers. Asynchronous subscribers run on a
// bounded goroutine pool.
type Bus struct {
	bus  evbus.Bus
	pool *ants.Pool
	wg   sync.WaitGroup
}

func NewBus(poolSize int) (*Bus, error) {
	if poolSize <= 0 {
		poolSize = 16
	}
	pool, err := ants.NewPool(poolSize, ants.WithPanicHandler(func(p interface{}) {
		zap.L().Error("event subscriber panic", zap.String("namespace", "events"), zap.Any("panic", p))
	}))
	if err != nil {
		return nil, err
	}
	return &Bus{bus: evbus.New(), pool: pool}, nil
}

// Subscribe registers fn for topic; fn runs on the worker pool.
func (b *Bus) Subscribe(topic string, fn func(Event)) error {
	return b.bus.Subscribe(topic, func(e Event) {
		b.wg.Add(1)
		err := b.pool.Submit(func() {
			defer b.wg.Done()
			fn(e)
		})
		if err != nil {
			b.wg.Done()
			zap.L().Warn("event dropped, worker pool rejected task",
				zap.String("namespace", "events"),
				zap.String("topic", e.Topic),
				zap.Error(err))
		}
	})
}

// SubscribeSync registers fn to run on the publishing goroutine.
func (b *Bus) SubscribeSync(topic string, fn func(Event)) error {
	return b.bus.Subscribe(topic, fn)
}

// Publish delivers each event to the subscribers of its topic. A nil Bus
// drops events.
func (b *Bus) Publish(evts ...Event) {
	if b == nil {
		return
	}
	for _, e := range evts {
		if b.bus.HasCallback(e.Topic) {
			b.bus.Publish(e.Topic, e)
		}
	}
}

// Wait blocks until all asynchronous deliveries published so far finished.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Close waits for in-flight deliveries and releases the pool.
func (b *Bus) Close() {
	b.Wait()
	_ = b.pool.ReleaseTimeout(5 * time.Second)
}
