package analysis

import (
	"math"
	"time"
)

// DefaultPeakDecay is the time it takes a peak reading to fall by 12 dB
// under continuous silence.
const DefaultPeakDecay = 150 * time.Millisecond

// decayTarget is the linear gain reached after one decay period (-12 dB).
const decayTarget = 0.25

// DecayConfig holds the inputs of the peak decay coefficient.
type DecayConfig struct {
	SampleRate float64
	Duration   time.Duration
}

// Weight returns the smoothing coefficient 0.25^(1/(sampleRate*seconds)).
// Invalid configurations return 0, which disables smoothing.
func (c DecayConfig) Weight() float32 {
	seconds := c.Duration.Seconds()
	if c.SampleRate <= 0 || seconds <= 0 {
		return 0
	}
	return float32(math.Pow(decayTarget, 1/(c.SampleRate*seconds)))
}

// PeakDecay turns per-block amplitudes into a peak reading with instant
// attack and exponential release.
//
// It is driven from the audio callback and is not safe for concurrent use;
// readers on other goroutines go through a published meter value instead.
type PeakDecay struct {
	cfg    DecayConfig
	weight float32
	peak   float32
}

// NewPeakDecay creates an estimator at silence. The weight is computed
// immediately from cfg.
func NewPeakDecay(cfg DecayConfig) *PeakDecay {
	pd := &PeakDecay{
		cfg:  cfg,
		peak: float32(math.Inf(-1)),
	}
	pd.weight = cfg.Weight()
	return pd
}

// SetSampleRate recomputes the weight when the rate differs from the current
// one. It does not allocate and is safe to call from the audio callback.
func (pd *PeakDecay) SetSampleRate(sampleRate float64) {
	if sampleRate == pd.cfg.SampleRate {
		return
	}
	pd.cfg.SampleRate = sampleRate
	pd.weight = pd.cfg.Weight()
}

// SetDuration changes the 12 dB decay time and recomputes the weight.
func (pd *PeakDecay) SetDuration(d time.Duration) {
	if d == pd.cfg.Duration {
		return
	}
	pd.cfg.Duration = d
	pd.weight = pd.cfg.Weight()
}

// Config returns the configuration the weight was derived from.
func (pd *PeakDecay) Config() DecayConfig {
	return pd.cfg
}

// Weight returns the current smoothing coefficient.
func (pd *PeakDecay) Weight() float32 {
	return pd.weight
}

// Peak returns the current peak in linear amplitude.
func (pd *PeakDecay) Peak() float32 {
	return pd.peak
}

// SetPeak overrides the current state, e.g. to resume from a published value.
func (pd *PeakDecay) SetPeak(v float32) {
	pd.peak = v
}

// Update folds one block amplitude into the state and returns the new peak.
// Larger values replace the peak directly; smaller ones are blended in.
func (pd *PeakDecay) Update(value float32) float32 {
	if value > pd.peak {
		pd.peak = value
	} else {
		pd.peak = pd.peak*pd.weight + value*(1-pd.weight)
	}
	return pd.peak
}

// ProcessBlock updates the state from the mean absolute amplitude of samples.
// Empty blocks leave the state unchanged.
func (pd *PeakDecay) ProcessBlock(samples []float32) float32 {
	value, ok := MeanAbs(samples)
	if !ok {
		return pd.peak
	}
	return pd.Update(value)
}

// MeanAbs returns the mean absolute sample value. ok is false for an empty
// block. Non-finite samples propagate into the result.
func MeanAbs(samples []float32) (mean float32, ok bool) {
	if len(samples) == 0 {
		return 0, false
	}
	var sum float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		sum += s
	}
	return sum / float32(len(samples)), true
}
