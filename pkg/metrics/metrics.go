// Package metrics keeps a small on-disk time series of operational gauges
// and counters (orders placed, low stock products, process usage).
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

var (
	mu       sync.RWMutex
	storage  tstorage.Storage
	counters = map[string]int64{}
)

// InitMetrics opens the metric storage under <workdir>/data/metrics.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// SetGauge records the current value of a gauge.
func SetGauge(name string, value int64) {
	insert(name, value)
}

// Incr adds delta to a monotonic counter and records its new total.
func Incr(name string, delta int64) int64 {
	mu.Lock()
	counters[name] += delta
	total := counters[name]
	mu.Unlock()
	insert(name, total)
	return total
}

// Counter returns the in-process total of a counter.
func Counter(name string) int64 {
	mu.RLock()
	defer mu.RUnlock()
	return counters[name]
}

// Latest returns the most recent stored value of name within the window.
func Latest(name string, window time.Duration) (int64, bool) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return 0, false
	}
	end := time.Now().Unix() + 1
	points, err := s.Select(name, nil, end-int64(window.Seconds()), end)
	if err != nil || len(points) == 0 {
		return 0, false
	}
	return int64(points[len(points)-1].Value), true
}

func insert(name string, value int64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}

// Close flushes and closes the storage.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
