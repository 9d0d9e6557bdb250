package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq, amp, sampleRate float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func TestR128EstimatorUnavailableUntilWindowFilled(t *testing.T) {
	const sr = 48000.0
	est, err := NewR128Estimator(sr, 2)
	require.NoError(t, err)

	_, err = est.Momentary()
	assert.True(t, errors.Is(err, ErrLoudnessUnavailable))

	block := sine(480, 1000, 0.5, sr)
	// 39 blocks of 10 ms are one block short of the 400 ms window.
	for i := 0; i < 39; i++ {
		est.AddFramesPlanar([][]float32{block, block})
		_, err = est.Momentary()
		require.ErrorIs(t, err, ErrLoudnessUnavailable, "block %d", i)
	}

	est.AddFramesPlanar([][]float32{block, block})
	v, err := est.Momentary()
	require.NoError(t, err)
	assert.False(t, math.IsInf(v, 0))
}

func TestR128EstimatorSineLevel(t *testing.T) {
	const sr = 48000.0
	est, err := NewR128Estimator(sr, 1)
	require.NoError(t, err)

	// One second of a 1 kHz sine at -6 dBFS reads about -9.1 LUFS.
	signal := sine(int(sr), 1000, 0.5, sr)
	for off := 0; off < len(signal); off += 512 {
		end := off + 512
		if end > len(signal) {
			end = len(signal)
		}
		est.AddFramesPlanar([][]float32{signal[off:end]})
	}

	v, err := est.Momentary()
	require.NoError(t, err)
	assert.InDelta(t, -9.1, v, 0.3)
}

func TestR128EstimatorStereoIsLouder(t *testing.T) {
	const sr = 48000.0
	mono, err := NewR128Estimator(sr, 2)
	require.NoError(t, err)
	both, err := NewR128Estimator(sr, 2)
	require.NoError(t, err)

	signal := sine(int(sr/2), 1000, 0.5, sr)
	silence := make([]float32, len(signal))
	mono.AddFramesPlanar([][]float32{signal, silence})
	both.AddFramesPlanar([][]float32{signal, signal})

	m, err := mono.Momentary()
	require.NoError(t, err)
	b, err := both.Momentary()
	require.NoError(t, err)
	assert.InDelta(t, 3.01, b-m, 0.1)
}

func TestR128EstimatorReset(t *testing.T) {
	const sr = 44100.0
	est, err := NewR128Estimator(sr, 2)
	require.NoError(t, err)

	block := sine(int(sr), 440, 0.25, sr)
	est.AddFramesPlanar([][]float32{block, block})
	_, err = est.Momentary()
	require.NoError(t, err)

	est.Reset()
	_, err = est.Momentary()
	assert.ErrorIs(t, err, ErrLoudnessUnavailable)
}

func TestR128EstimatorMissingChannels(t *testing.T) {
	est, err := NewR128Estimator(48000, 2)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		est.AddFramesPlanar([][]float32{make([]float32, 64)})
		est.AddFramesPlanar([][]float32{make([]float32, 64), make([]float32, 10)})
		est.AddFramesPlanar(nil)
	})
}

func TestR128EstimatorInvalidConfig(t *testing.T) {
	_, err := NewR128Estimator(0, 2)
	assert.Error(t, err)

	_, err = NewR128Estimator(48000, 0)
	assert.Error(t, err)

	est, err := R128Factory(48000, 2)
	require.NoError(t, err)
	assert.NotNil(t, est)
}

func TestR128EstimatorNoAllocations(t *testing.T) {
	est, err := NewR128Estimator(48000, 2)
	require.NoError(t, err)

	block := sine(256, 1000, 0.5, 48000)
	channels := [][]float32{block, block}
	allocs := testing.AllocsPerRun(50, func() {
		est.AddFramesPlanar(channels)
		_, _ = est.Momentary()
	})
	assert.Zero(t, allocs)
}
