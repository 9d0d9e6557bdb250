package meter

import (
	"math"
	"sync/atomic"
)

// Publisher owns the metrics of one pipeline instance: left and right peak
// in linear amplitude and momentary loudness in LUFS. The three values are
// written independently and are not mutually consistent at any instant.
//
// The active flag is owned by the presentation side. The audio side reads it
// to skip peak work while nobody is watching.
type Publisher struct {
	PeakLeft  Value
	PeakRight Value
	Loudness  Value

	active atomic.Bool
}

// Snapshot is a set of independent loads from a Publisher.
type Snapshot struct {
	PeakLeft  float32
	PeakRight float32
	Loudness  float32
}

// NewPublisher returns a publisher with every metric at negative infinity.
func NewPublisher() *Publisher {
	p := &Publisher{}
	silence := float32(math.Inf(-1))
	p.PeakLeft.Store(silence)
	p.PeakRight.Store(silence)
	p.Loudness.Store(silence)
	return p
}

// SetActive marks whether a reader is currently presenting the metrics.
func (p *Publisher) SetActive(active bool) {
	p.active.Store(active)
}

// Active reports whether a reader is currently presenting the metrics.
func (p *Publisher) Active() bool {
	return p.active.Load()
}

// Snapshot loads each metric once.
func (p *Publisher) Snapshot() Snapshot {
	return Snapshot{
		PeakLeft:  p.PeakLeft.Load(),
		PeakRight: p.PeakRight.Load(),
		Loudness:  p.Loudness.Load(),
	}
}
