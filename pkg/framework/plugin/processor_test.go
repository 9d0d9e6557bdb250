package plugin

import (
	"errors"
	"testing"

	"github.com/audioversary/vstmommy/pkg/framework/bus"
)

func TestBaseProcessorDefaults(t *testing.T) {
	b := NewBaseProcessor(nil)

	if got := b.GetBuses().MainChannels(bus.DirectionInput); got != 2 {
		t.Errorf("expected stereo default, got %d channels", got)
	}
	if b.GetLatencySamples() != 0 || b.GetTailSamples() != 0 {
		t.Error("expected no latency and no tail")
	}
	if err := b.Initialize(48000, 512); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if b.SampleRate() != 48000 || b.MaxBlockSize() != 512 {
		t.Errorf("unexpected state: %v / %d", b.SampleRate(), b.MaxBlockSize())
	}
}

func TestBaseProcessorCallbacks(t *testing.T) {
	b := NewBaseProcessor(bus.NewSymmetricConfiguration(1))

	var resets, activations int
	b.OnReset(func() { resets++ })
	b.OnSetActive(func(active bool) error {
		if active {
			activations++
		}
		return nil
	})

	_ = b.SetActive(true)
	_ = b.SetActive(false)
	if resets != 1 || activations != 1 {
		t.Errorf("expected 1 reset and 1 activation, got %d and %d", resets, activations)
	}
}

func TestBaseProcessorInitializeError(t *testing.T) {
	b := NewBaseProcessor(nil)
	_ = b.Initialize(44100, 256)

	errBoom := errors.New("boom")
	b.OnInitialize(func(float64, int32) error { return errBoom })

	if err := b.Initialize(96000, 1024); !errors.Is(err, errBoom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if b.SampleRate() != 44100 {
		t.Errorf("failed Initialize must keep the previous rate, got %v", b.SampleRate())
	}
}
