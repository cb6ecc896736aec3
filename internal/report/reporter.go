// Package report periodically pushes room-occupancy gauges to the metrics
// sink.
package report

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/collabkit/roomwatch/internal/metrics"
)

// RoomCounter is the slice of the registry the reporter needs.
type RoomCounter interface {
	Count() int
}

type Config struct {
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Minute,
	}
}

type Reporter struct {
	logger *zap.Logger
	rooms  RoomCounter
	sink   metrics.Sink
	config Config
	stop   chan struct{}
	wg     sync.WaitGroup
}

func New(logger *zap.Logger, rooms RoomCounter, sink metrics.Sink, config Config) *Reporter {
	return &Reporter{
		logger: logger,
		rooms:  rooms,
		sink:   sink,
		config: config,
		stop:   make(chan struct{}),
	}
}

func (r *Reporter) Start() {
	r.wg.Add(1)
	go r.run()
	r.logger.Info("room gauge reporter started",
		zap.Duration("interval", r.config.Interval))
}

func (r *Reporter) Stop() {
	close(r.stop)
	r.wg.Wait()
}

func (r *Reporter) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.report()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Reporter) report() {
	r.sink.Gauge("Rooms_Active", int64(r.rooms.Count()))
}
