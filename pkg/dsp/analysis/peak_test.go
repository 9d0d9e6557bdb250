package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecayConfigWeight(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		duration   time.Duration
	}{
		{"44.1k default", 44100, DefaultPeakDecay},
		{"48k default", 48000, DefaultPeakDecay},
		{"96k default", 96000, DefaultPeakDecay},
		{"48k long", 48000, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DecayConfig{SampleRate: tt.sampleRate, Duration: tt.duration}.Weight()
			want := float32(math.Pow(0.25, 1/(tt.sampleRate*tt.duration.Seconds())))
			assert.Equal(t, want, w)
			assert.Greater(t, w, float32(0))
			assert.Less(t, w, float32(1))
		})
	}

	t.Run("invalid", func(t *testing.T) {
		assert.Zero(t, DecayConfig{SampleRate: 0, Duration: DefaultPeakDecay}.Weight())
		assert.Zero(t, DecayConfig{SampleRate: 48000}.Weight())
	})
}

func TestPeakDecayStartsSilent(t *testing.T) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 48000, Duration: DefaultPeakDecay})
	assert.True(t, math.IsInf(float64(pd.Peak()), -1))

	// Any finite amplitude beats the sentinel, including zero.
	assert.Equal(t, float32(0), pd.Update(0))
}

func TestPeakDecayInstantAttack(t *testing.T) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 48000, Duration: DefaultPeakDecay})

	for _, prev := range []float32{0, 0.1, 0.4999} {
		pd.SetPeak(prev)
		assert.Equal(t, float32(0.5), pd.Update(0.5), "from %v", prev)
	}
}

func TestPeakDecayBlend(t *testing.T) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 48000, Duration: DefaultPeakDecay})
	w := pd.Weight()

	pd.SetPeak(0.8)
	got := pd.Update(0.2)
	assert.InDelta(t, 0.8*w+0.2*(1-w), got, 1e-7)
}

func TestPeakDecaySilenceIsGeometric(t *testing.T) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 44100, Duration: DefaultPeakDecay})
	w := float64(pd.Weight())
	const start = 0.9
	pd.SetPeak(start)

	silence := []float32{0}
	for k := 1; k <= 500; k++ {
		got := pd.ProcessBlock(silence)
		assert.InEpsilon(t, start*math.Pow(w, float64(k)), float64(got), 1e-4, "block %d", k)
	}
}

func TestPeakDecayTwelveDBDesignPoint(t *testing.T) {
	for _, sr := range []float64{44100, 48000, 96000} {
		pd := NewPeakDecay(DecayConfig{SampleRate: sr, Duration: DefaultPeakDecay})
		pd.SetPeak(1)

		blocks := int(math.Round(sr * 0.15))
		silence := []float32{0}
		for i := 0; i < blocks; i++ {
			pd.ProcessBlock(silence)
		}

		assert.InDelta(t, 0.25, pd.Peak(), 0.002, "sample rate %v", sr)
		db := 20 * math.Log10(float64(pd.Peak()))
		assert.InDelta(t, -12.04, db, 0.1, "sample rate %v", sr)
	}
}

func TestPeakDecayMeanAbs(t *testing.T) {
	mean, ok := MeanAbs([]float32{0.5, -0.5, 1, -1})
	require.True(t, ok)
	assert.Equal(t, float32(0.75), mean)

	_, ok = MeanAbs(nil)
	assert.False(t, ok)

	pd := NewPeakDecay(DecayConfig{SampleRate: 48000, Duration: DefaultPeakDecay})
	assert.Equal(t, float32(0.75), pd.ProcessBlock([]float32{0.5, -0.5, 1, -1}))

	// Empty blocks are skipped.
	assert.Equal(t, float32(0.75), pd.ProcessBlock([]float32{}))
}

func TestPeakDecayNonFinitePropagates(t *testing.T) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 48000, Duration: DefaultPeakDecay})
	pd.SetPeak(0.5)

	got := pd.ProcessBlock([]float32{float32(math.NaN())})
	assert.True(t, math.IsNaN(float64(got)))

	pd.SetPeak(0.5)
	got = pd.ProcessBlock([]float32{float32(math.Inf(-1))})
	assert.True(t, math.IsInf(float64(got), 1))
}

func TestPeakDecaySampleRateChange(t *testing.T) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 44100, Duration: DefaultPeakDecay})
	w44 := pd.Weight()

	pd.SetSampleRate(44100)
	assert.Equal(t, w44, pd.Weight())

	pd.SetSampleRate(96000)
	assert.Equal(t, DecayConfig{SampleRate: 96000, Duration: DefaultPeakDecay}.Weight(), pd.Weight())
	assert.Greater(t, pd.Weight(), w44)
	assert.Equal(t, 96000.0, pd.Config().SampleRate)

	pd.SetDuration(300 * time.Millisecond)
	assert.Equal(t, DecayConfig{SampleRate: 96000, Duration: 300 * time.Millisecond}.Weight(), pd.Weight())
}

func TestPeakDecayNoAllocations(t *testing.T) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 48000, Duration: DefaultPeakDecay})
	block := make([]float32, 512)
	for i := range block {
		block[i] = float32(math.Sin(float64(i) * 0.01))
	}

	allocs := testing.AllocsPerRun(100, func() {
		pd.ProcessBlock(block)
		pd.SetSampleRate(44100)
		pd.SetSampleRate(48000)
	})
	assert.Zero(t, allocs)
}

func BenchmarkPeakDecayProcessBlock(b *testing.B) {
	pd := NewPeakDecay(DecayConfig{SampleRate: 48000, Duration: DefaultPeakDecay})
	block := make([]float32, 512)
	for i := range block {
		block[i] = float32(math.Sin(float64(i) * 0.01))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pd.ProcessBlock(block)
	}
}
