// Package vstmommy is a stereo analyzer effect: audio passes through
// untouched while the processor publishes peak and momentary loudness
// readings for an editor running on another goroutine.
package vstmommy

import (
	"time"

	"github.com/audioversary/vstmommy/pkg/dsp/analysis"
	"github.com/audioversary/vstmommy/pkg/framework/debug"
	"github.com/audioversary/vstmommy/pkg/framework/meter"
	"github.com/audioversary/vstmommy/pkg/framework/plugin"
	"github.com/audioversary/vstmommy/pkg/framework/state"
)

// Version is the plugin version reported to hosts.
const Version = "0.2.0"

// Info returns the plugin metadata.
func Info() plugin.Info {
	return plugin.Info{
		ID:       "town.versary.vstmommy",
		Name:     "vst-mommy",
		Version:  Version,
		Vendor:   "audioversary",
		URL:      "https://audio.versary.town",
		Email:    "annie@versary.town",
		Category: "Fx|Analyzer",
	}
}

// Config holds the tunable metering behaviour shared by the processor and
// the editor.
type Config struct {
	// PeakDecay is the time for a peak reading to fall 12 dB in silence.
	PeakDecay time.Duration
	// PeakHold is how long the editor holds the highest peak.
	PeakHold time.Duration
	// LoudnessThreshold is the momentary LUFS level below which the editor
	// asks for more.
	LoudnessThreshold float64
	// HistoryLen is the number of editor frames kept for the sparkline.
	HistoryLen int
}

// DefaultConfig returns the stock metering behaviour.
func DefaultConfig() Config {
	return Config{
		PeakDecay:         analysis.DefaultPeakDecay,
		PeakHold:          600 * time.Millisecond,
		LoudnessThreshold: -7,
		HistoryLen:        48,
	}
}

// Plugin implements plugin.Plugin.
type Plugin struct {
	cfg    Config
	params *Params
	logger *debug.Logger
}

// New creates the plugin. A nil logger uses the package default.
func New(cfg Config, logger *debug.Logger) *Plugin {
	if logger == nil {
		logger = debug.Default()
	}
	return &Plugin{cfg: cfg, params: NewParams(cfg), logger: logger}
}

// GetInfo implements plugin.Plugin.
func (p *Plugin) GetInfo() plugin.Info {
	return Info()
}

// CreateProcessor implements plugin.Plugin.
func (p *Plugin) CreateProcessor() plugin.Processor {
	return NewProcessor(
		WithPeakDecay(p.cfg.PeakDecay),
		WithParams(p.params),
		WithLogger(p.logger),
	)
}

// Config returns the configuration the plugin was created with.
func (p *Plugin) Config() Config {
	return p.cfg
}

// Params returns the parameters shared by every processor and editor of
// this plugin.
func (p *Plugin) Params() *Params {
	return p.params
}

// CreateEditor returns a closed editor bound to pub and the plugin
// parameters.
func (p *Plugin) CreateEditor(pub *meter.Publisher) *Editor {
	e := NewEditor(pub, p.cfg)
	e.BindParams(p.params)
	return e
}

// StateManager persists the parameters and, when editor is not nil, the
// editor state.
func (p *Plugin) StateManager(editor *Editor) *state.Manager {
	m := state.NewManager(p.params.Registry)
	if editor != nil {
		m.SetCustom(editor)
	}
	return m
}
