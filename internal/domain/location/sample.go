package location

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sample is one GPS fix pushed by a shipper at ~1 Hz.
type Sample struct {
	ShipperID  uuid.UUID
	ShipmentID *uuid.UUID
	Loc        Location
	Heading    float64
	SpeedKph   float64
	AccuracyM  float64
	At         time.Time
}

// RingBuffer keeps the last N samples for a single shipper in memory for
// spot-debug traces. It is deliberately not durable: samples are dropped on
// process restart.
type RingBuffer struct {
	mu      sync.Mutex
	samples []Sample
	size    int
	next    int
	full    bool
}

// NewRingBuffer creates a ring buffer holding up to n samples.
func NewRingBuffer(n int) *RingBuffer {
	if n <= 0 {
		n = 100
	}

	return &RingBuffer{samples: make([]Sample, n), size: n}
}

// Push appends a sample, overwriting the oldest once the buffer is full.
func (r *RingBuffer) Push(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples[r.next] = s
	r.next = (r.next + 1) % r.size
	if r.next == 0 {
		r.full = true
	}
}

// Snapshot returns the buffered samples in chronological order (oldest first).
func (r *RingBuffer) Snapshot() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]Sample, r.next)
		copy(out, r.samples[:r.next])

		return out
	}

	out := make([]Sample, r.size)
	copy(out, r.samples[r.next:])
	copy(out[r.size-r.next:], r.samples[:r.next])

	return out
}
