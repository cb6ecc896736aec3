// Package latency accumulates per-dimension write-latency samples for the
// benchmarking harness and exports aggregated averages.
package latency

import (
	"sort"
	"sync"
)

// Bucket identifies one benchmark dimension pair. The dimensions are
// declared by the harness payload, not inferred by the service.
type Bucket struct {
	RoomCount   int
	ClientCount int
}

// Average is one exported row: the arithmetic mean of all samples recorded
// under a bucket.
type Average struct {
	RoomCount     int
	ClientCount   int
	MeanLatencyMs float64
}

// Recorder collects elapsed-millisecond samples per bucket. Buckets are
// created on first use and never evicted; the set grows for the life of the
// process, which is acceptable at benchmark scale.
type Recorder struct {
	mu      sync.Mutex
	samples map[Bucket][]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		samples: make(map[Bucket][]int),
	}
}

// Appends a sample to the identified bucket, creating it if absent.
func (r *Recorder) Record(roomCount, clientCount, elapsedMs int) {
	key := Bucket{RoomCount: roomCount, ClientCount: clientCount}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[key] = append(r.samples[key], elapsedMs)
}

// SampleCount returns the total number of recorded samples across buckets.
func (r *Recorder) SampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, s := range r.samples {
		total += len(s)
	}
	return total
}

// ExportAverages produces one row per bucket, ordered by room count then
// client count so exports are reproducible.
func (r *Recorder) ExportAverages() []Average {
	r.mu.Lock()
	defer r.mu.Unlock()

	averages := make([]Average, 0, len(r.samples))
	for bucket, samples := range r.samples {
		if len(samples) == 0 {
			continue
		}
		sum := 0
		for _, s := range samples {
			sum += s
		}
		averages = append(averages, Average{
			RoomCount:     bucket.RoomCount,
			ClientCount:   bucket.ClientCount,
			MeanLatencyMs: float64(sum) / float64(len(samples)),
		})
	}

	sort.Slice(averages, func(i, j int) bool {
		if averages[i].RoomCount != averages[j].RoomCount {
			return averages[i].RoomCount < averages[j].RoomCount
		}
		return averages[i].ClientCount < averages[j].ClientCount
	})

	return averages
}
