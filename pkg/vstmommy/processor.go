package vstmommy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/audioversary/vstmommy/pkg/dsp/analysis"
	"github.com/audioversary/vstmommy/pkg/framework/bus"
	"github.com/audioversary/vstmommy/pkg/framework/debug"
	"github.com/audioversary/vstmommy/pkg/framework/meter"
	"github.com/audioversary/vstmommy/pkg/framework/plugin"
	"github.com/audioversary/vstmommy/pkg/framework/process"
)

var _ plugin.Processor = (*Processor)(nil)

// Processor meters a stereo signal and passes it through unchanged.
//
// ProcessAudio runs on the audio thread: it never blocks, allocates or logs.
// The editor side talks to it only through the Publisher.
type Processor struct {
	*plugin.BaseProcessor

	id  string
	pub *meter.Publisher
	log *debug.Logger

	params *Params
	peakL  *analysis.PeakDecay
	peakR  *analysis.PeakDecay

	newLoudness analysis.LoudnessFactory
	loudness    analysis.LoudnessEstimator
}

// Option configures a Processor.
type Option func(*Processor)

// WithPeakDecay sets the 12 dB peak decay time.
func WithPeakDecay(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.peakL.SetDuration(d)
			p.peakR.SetDuration(d)
		}
	}
}

// WithParams makes the processor follow the Peak Decay parameter. It
// overrides WithPeakDecay.
func WithParams(params *Params) Option {
	return func(p *Processor) {
		p.params = params
	}
}

// WithLoudnessFactory replaces the momentary loudness estimator.
func WithLoudnessFactory(f analysis.LoudnessFactory) Option {
	return func(p *Processor) {
		if f != nil {
			p.newLoudness = f
		}
	}
}

// WithLogger sets the parent logger. The processor logs under its own
// instance prefix.
func WithLogger(l *debug.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// WithPublisher shares an existing publisher instead of creating one.
func WithPublisher(pub *meter.Publisher) Option {
	return func(p *Processor) {
		if pub != nil {
			p.pub = pub
		}
	}
}

// NewProcessor creates a stereo processor. Call Initialize before the first
// ProcessAudio.
func NewProcessor(opts ...Option) *Processor {
	decay := analysis.DecayConfig{Duration: analysis.DefaultPeakDecay}
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(bus.NewStereoConfiguration()),
		id:            uuid.NewString(),
		pub:           meter.NewPublisher(),
		log:           debug.Default(),
		peakL:         analysis.NewPeakDecay(decay),
		peakR:         analysis.NewPeakDecay(decay),
		newLoudness:   analysis.R128Factory,
	}

	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("vstmommy " + p.id[:8])

	p.OnInitialize(p.initialize)
	p.OnReset(p.reset)

	return p
}

// ID returns the instance id used in log lines.
func (p *Processor) ID() string {
	return p.id
}

// Publisher returns the metrics shared with readers.
func (p *Processor) Publisher() *meter.Publisher {
	return p.pub
}

func (p *Processor) initialize(sampleRate float64, maxBlockSize int32) error {
	buses := p.GetBuses()
	in := int(buses.MainChannels(bus.DirectionInput))
	out := int(buses.MainChannels(bus.DirectionOutput))
	if err := bus.RequireStereo(in, out); err != nil {
		return fmt.Errorf("vstmommy: initialize: %w", err)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("vstmommy: initialize: invalid sample rate %v", sampleRate)
	}

	est, err := p.newLoudness(sampleRate, 2)
	if err != nil {
		return fmt.Errorf("vstmommy: create loudness estimator: %w", err)
	}
	p.loudness = est

	p.peakL.SetSampleRate(sampleRate)
	p.peakR.SetSampleRate(sampleRate)

	p.log.Info("initialized at %.0f Hz, max block %d, decay weight %.6f",
		sampleRate, maxBlockSize, p.peakL.Weight())
	return nil
}

func (p *Processor) reset() {
	if p.loudness != nil {
		p.loudness.Reset()
	}
	p.log.Debug("processing stopped, loudness history cleared")
}

// ProcessAudio implements plugin.Processor.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	ctx.PassThrough()

	left, right, ok := ctx.StereoInput()
	if !ok {
		return
	}

	if ctx.SampleRate > 0 {
		p.peakL.SetSampleRate(ctx.SampleRate)
		p.peakR.SetSampleRate(ctx.SampleRate)
	}
	if p.params != nil {
		d := p.params.Decay()
		p.peakL.SetDuration(d)
		p.peakR.SetDuration(d)
	}

	if p.pub.Active() {
		p.pub.PeakLeft.Store(p.peakL.ProcessBlock(left))
		p.pub.PeakRight.Store(p.peakR.ProcessBlock(right))
	}

	if p.loudness == nil {
		return
	}
	p.loudness.AddFramesPlanar(ctx.Input[:2])
	if lufs, err := p.loudness.Momentary(); err == nil {
		p.pub.Loudness.Store(float32(lufs))
	}
}
