// Package metrics emits process-wide counters, timers, and gauges.
// Sinks are fire-and-forget: they must never block the caller and never
// surface transport failures as errors.
package metrics

import (
	"time"

	"github.com/cactus/go-statsd-client/v5/statsd"
	"go.uber.org/zap"
)

// Sink is the metrics contract the rest of the service depends on.
// Implementations must be safe for concurrent use.
type Sink interface {
	Increment(name string, value int64)
	Timing(name string, d time.Duration)
	Gauge(name string, value int64)
}

// StatsdSink pushes metrics to a statsd daemon over UDP. Send failures are
// swallowed and logged; callers never see them.
type StatsdSink struct {
	client statsd.Statter
	logger *zap.Logger
}

// Connects to the statsd daemon at addr, prefixing every metric with prefix.
func NewStatsdSink(addr, prefix string, logger *zap.Logger) (*StatsdSink, error) {
	client, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
		Address: addr,
		Prefix:  prefix,
	})
	if err != nil {
		return nil, err
	}
	return &StatsdSink{client: client, logger: logger}, nil
}

func (s *StatsdSink) Increment(name string, value int64) {
	if err := s.client.Inc(name, value, 1.0); err != nil {
		s.logger.Debug("statsd increment failed", zap.String("metric", name), zap.Error(err))
	}
}

func (s *StatsdSink) Timing(name string, d time.Duration) {
	if err := s.client.TimingDuration(name, d, 1.0); err != nil {
		s.logger.Debug("statsd timing failed", zap.String("metric", name), zap.Error(err))
	}
}

func (s *StatsdSink) Gauge(name string, value int64) {
	if err := s.client.Gauge(name, value, 1.0); err != nil {
		s.logger.Debug("statsd gauge failed", zap.String("metric", name), zap.Error(err))
	}
}

func (s *StatsdSink) Close() error {
	return s.client.Close()
}

// NoopSink discards everything. Used when tests need a Sink but no daemon.
type NoopSink struct{}

func (NoopSink) Increment(string, int64) {}

func (NoopSink) Timing(string, time.Duration) {}

func (NoopSink) Gauge(string, int64) {}
