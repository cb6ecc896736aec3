package report

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type staticCounter int

func (c staticCounter) Count() int { return int(c) }

type gaugeSink struct {
	mu     sync.Mutex
	gauges []int64
}

func (s *gaugeSink) Increment(string, int64) {}

func (s *gaugeSink) Timing(string, time.Duration) {}

func (s *gaugeSink) Gauge(name string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges = append(s.gauges, value)
}

func (s *gaugeSink) values() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.gauges))
	copy(out, s.gauges)
	return out
}

func TestReporterPushesGauge(t *testing.T) {
	sink := &gaugeSink{}
	r := New(zap.NewNop(), staticCounter(7), sink, Config{Interval: 20 * time.Millisecond})

	r.Start()
	time.Sleep(50 * time.Millisecond)
	r.Stop()

	values := sink.values()
	if len(values) < 2 {
		t.Fatalf("Expected at least 2 gauge pushes (initial + tick), got %d", len(values))
	}
	for _, v := range values {
		if v != 7 {
			t.Errorf("Expected gauge value 7, got %d", v)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	if DefaultConfig().Interval != 10*time.Minute {
		t.Errorf("Unexpected default interval %v", DefaultConfig().Interval)
	}
}
