package app

import (
	"github.com/shopstock/shopstock/config"
	"github.com/shopstock/shopstock/internal/events"
	"github.com/shopstock/shopstock/pkg/metrics"
	"go.uber.org/zap"
)

// initEventSubscribers attaches the metric counters, the event log and,
// when brokers are configured, the Kafka sink.
func (a *Application) initEventSubscribers(cfg *config.AppConfig) {
	counters := map[string]string{
		events.TopicOrderPlaced:    MetricOrdersPlaced,
		events.TopicOrderResponded: MetricOrdersResponded,
		events.TopicStockLow:       MetricLowStockAlerts,
	}
	for topic, metric := range counters {
		metric := metric
		err := a.bus.Subscribe(topic, func(e events.Event) {
			metrics.Incr(metric, 1)
			zap.L().Debug("domain event",
				zap.String("namespace", "events"),
				zap.String("topic", e.Topic),
				zap.String("key", e.Key))
		})
		if err != nil {
			zap.L().Error("subscribe event topic", zap.String("topic", topic), zap.Error(err))
		}
	}

	if len(cfg.Events.KafkaBrokers) == 0 {
		return
	}
	a.kafkaSink = events.NewKafkaSink(events.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic))
	if err := a.kafkaSink.Attach(a.bus); err != nil {
		zap.L().Error("attach kafka sink", zap.Error(err))
		return
	}
	zap.L().Info("kafka event sink enabled",
		zap.Strings("brokers", cfg.Events.KafkaBrokers),
		zap.String("topic", cfg.Events.KafkaTopic))
}
