package vstmommy

import (
	"time"

	"github.com/audioversary/vstmommy/pkg/framework/param"
)

// Parameter IDs. They are persisted in state files and must not change.
const (
	ParamPeakDecay uint32 = iota
	ParamPeakHold
	ParamLoudnessTarget
)

// Parameter ranges in plain units.
const (
	MinPeakDecayMs = 10
	MaxPeakDecayMs = 2000
	MinPeakHoldMs  = 0
	MaxPeakHoldMs  = 5000
	MinTargetLUFS  = -60
	MaxTargetLUFS  = 0
)

// Params are the automatable metering settings. The processor reads
// PeakDecay every block; the editor reads the others every frame.
type Params struct {
	Registry       *param.Registry
	PeakDecay      *param.Parameter
	PeakHold       *param.Parameter
	LoudnessTarget *param.Parameter
}

// NewParams creates the parameters with defaults taken from cfg.
func NewParams(cfg Config) *Params {
	p := &Params{
		Registry:       param.NewRegistry(),
		PeakDecay:      param.New(ParamPeakDecay, "Peak Decay", "ms", MinPeakDecayMs, MaxPeakDecayMs, ms(cfg.PeakDecay)),
		PeakHold:       param.New(ParamPeakHold, "Peak Hold", "ms", MinPeakHoldMs, MaxPeakHoldMs, ms(cfg.PeakHold)),
		LoudnessTarget: param.New(ParamLoudnessTarget, "Loudness Target", "LUFS", MinTargetLUFS, MaxTargetLUFS, cfg.LoudnessThreshold),
	}
	p.PeakDecay.SetFormatter(param.TimeFormatter, param.TimeParser)
	p.PeakHold.SetFormatter(param.TimeFormatter, param.TimeParser)
	p.LoudnessTarget.SetFormatter(param.LoudnessFormatter, param.LoudnessParser)

	// IDs are distinct constants, so Add cannot fail.
	_ = p.Registry.Add(p.PeakDecay, p.PeakHold, p.LoudnessTarget)
	return p
}

// Decay returns the current peak decay time.
func (p *Params) Decay() time.Duration {
	return fromMS(p.PeakDecay.GetPlainValue())
}

// Hold returns the current peak hold time.
func (p *Params) Hold() time.Duration {
	return fromMS(p.PeakHold.GetPlainValue())
}

// Threshold returns the current loudness target in LUFS.
func (p *Params) Threshold() float64 {
	return p.LoudnessTarget.GetPlainValue()
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func fromMS(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond)).Round(time.Millisecond)
}
