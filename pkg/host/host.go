// Package host runs a plugin processor on the system audio device. The
// device's data callback is the real-time scheduler: every period it hands
// the captured block to the processor and plays back the result.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/audioversary/vstmommy/pkg/framework/debug"
	"github.com/audioversary/vstmommy/pkg/framework/plugin"
	"github.com/audioversary/vstmommy/pkg/host/config"
)

// Channels is the stream width. The analyzer meters stereo.
const Channels = 2

var (
	ErrRunning    = errors.New("host: already running")
	ErrNotRunning = errors.New("host: not running")
)

// Host owns a duplex capture/playback device driving one processor.
type Host struct {
	cfg  config.HostConfig
	proc plugin.Processor
	log  *debug.Logger
	load debug.CallbackLoad

	mu      sync.Mutex
	running bool
	mctx    *malgo.AllocatedContext
	device  *malgo.Device
	cb      *Callback
}

// New creates a stopped host. A nil logger uses the package default.
func New(cfg config.HostConfig, proc plugin.Processor, log *debug.Logger) *Host {
	if log == nil {
		log = debug.Default()
	}
	return &Host{
		cfg:  cfg,
		proc: proc,
		log:  log.With("host"),
	}
}

// Start opens the default duplex device, initializes the processor at the
// device rate and starts streaming.
func (h *Host) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return ErrRunning
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("host: init audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = Channels
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = Channels
	deviceConfig.SampleRate = uint32(h.cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(h.cfg.PeriodFrames())
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(output, input []byte, frameCount uint32) {
			h.cb.Process(output, input, frameCount)
		},
		Stop: func() {
			h.log.Debug("device stopped")
		},
	})
	if err != nil {
		h.freeContext(mctx)
		return fmt.Errorf("host: init duplex device: %w", err)
	}

	sampleRate := float64(device.SampleRate())
	h.log.WarnIf(int(sampleRate) != h.cfg.SampleRate,
		"device runs at %.0f Hz instead of %d Hz", sampleRate, h.cfg.SampleRate)
	frames := h.cfg.PeriodFrames()

	if err := h.proc.Initialize(sampleRate, int32(frames)); err != nil {
		device.Uninit()
		h.freeContext(mctx)
		return fmt.Errorf("host: initialize processor: %w", err)
	}
	h.cb = NewCallback(h.proc, sampleRate, frames, Channels, &h.load)
	h.load.Reset()
	h.load.SetBudget(sampleRate, frames)

	if err := h.proc.SetActive(true); err != nil {
		device.Uninit()
		h.freeContext(mctx)
		return fmt.Errorf("host: activate processor: %w", err)
	}
	if err := device.Start(); err != nil {
		_ = h.proc.SetActive(false)
		device.Uninit()
		h.freeContext(mctx)
		return fmt.Errorf("host: start device: %w", err)
	}

	h.mctx = mctx
	h.device = device
	h.running = true
	h.log.Info("streaming %d ch at %.0f Hz, period %d frames", Channels, sampleRate, frames)
	return nil
}

// Stop halts the device and releases it. The processor is deactivated.
func (h *Host) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return ErrNotRunning
	}
	h.running = false

	var errs []error
	if err := h.device.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("host: stop device: %w", err))
	}
	h.device.Uninit()
	h.device = nil

	if err := h.proc.SetActive(false); err != nil {
		errs = append(errs, fmt.Errorf("host: deactivate processor: %w", err))
	}
	h.freeContext(h.mctx)
	h.mctx = nil

	h.log.Info("stopped: %s", h.load.Stats())
	return errors.Join(errs...)
}

// Run streams until ctx is done, then stops the device.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return h.Stop()
}

// Running reports whether the device is streaming.
func (h *Host) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Load returns callback timing statistics.
func (h *Host) Load() debug.LoadStats {
	return h.load.Stats()
}

func (h *Host) freeContext(mctx *malgo.AllocatedContext) {
	if mctx == nil {
		return
	}
	if err := mctx.Uninit(); err != nil {
		h.log.Warn("uninit audio context: %v", err)
	}
	mctx.Free()
}
