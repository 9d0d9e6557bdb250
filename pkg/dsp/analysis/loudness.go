package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/measure/loudness"
)

// ErrLoudnessUnavailable is returned by LoudnessEstimator.Momentary while the
// estimator has not accumulated a full measurement window.
var ErrLoudnessUnavailable = errors.New("analysis: momentary loudness not yet available")

// momentaryWindow is the BS.1770 momentary integration time in seconds.
const momentaryWindow = 0.4

// LoudnessEstimator measures momentary loudness from planar frames.
//
// A failing Momentary call is a normal outcome, not a fault: callers keep
// their previous reading.
type LoudnessEstimator interface {
	// AddFramesPlanar feeds one block, one slice per channel.
	AddFramesPlanar(channels [][]float32)
	// Momentary returns the loudness of the most recent window in LUFS.
	Momentary() (float64, error)
	// Reset discards accumulated history.
	Reset()
}

// LoudnessFactory builds an estimator for a sample rate and channel count.
// It is called outside the audio callback and may allocate.
type LoudnessFactory func(sampleRate float64, channels int) (LoudnessEstimator, error)

// R128Estimator adapts the algo-dsp EBU R128 meter to LoudnessEstimator.
// After construction it does not allocate.
type R128Estimator struct {
	meter    *loudness.Meter
	channels int
	frame    []float64
	window   int
	filled   int
}

// NewR128Estimator creates a momentary loudness estimator.
func NewR128Estimator(sampleRate float64, channels int) (*R128Estimator, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analysis: invalid sample rate %v", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("analysis: invalid channel count %d", channels)
	}

	return &R128Estimator{
		meter: loudness.NewMeter(
			loudness.WithSampleRate(sampleRate),
			loudness.WithChannels(channels),
		),
		channels: channels,
		frame:    make([]float64, channels),
		window:   int(math.Round(momentaryWindow * sampleRate)),
	}, nil
}

// R128Factory is a LoudnessFactory backed by NewR128Estimator.
func R128Factory(sampleRate float64, channels int) (LoudnessEstimator, error) {
	return NewR128Estimator(sampleRate, channels)
}

// AddFramesPlanar implements LoudnessEstimator. Missing channels and short
// channel slices are read as silence.
func (e *R128Estimator) AddFramesPlanar(channels [][]float32) {
	n := 0
	for _, ch := range channels {
		if len(ch) > n {
			n = len(ch)
		}
	}

	for i := 0; i < n; i++ {
		for c := 0; c < e.channels; c++ {
			e.frame[c] = 0
			if c < len(channels) && i < len(channels[c]) {
				e.frame[c] = float64(channels[c][i])
			}
		}
		e.meter.ProcessSample(e.frame)
	}

	if e.filled < e.window {
		e.filled += n
	}
}

// Momentary implements LoudnessEstimator.
func (e *R128Estimator) Momentary() (float64, error) {
	if e.filled < e.window {
		return math.Inf(-1), ErrLoudnessUnavailable
	}
	return e.meter.Momentary(), nil
}

// Reset implements LoudnessEstimator.
func (e *R128Estimator) Reset() {
	e.meter.Reset()
	e.filled = 0
}
