// Package analysis provides the level measurements used by the metering
// pipeline.
//
// PeakDecay converts per-block mean amplitudes into a peak reading with
// instant attack and an exponential release calibrated so that silence
// lowers the reading by 12 dB over a configurable period (150 ms by default).
//
// LoudnessEstimator is the contract for momentary loudness. R128Estimator
// implements it on top of the algo-dsp EBU R128 meter and reports
// ErrLoudnessUnavailable until a full 400 ms window has been fed.
//
// Example usage:
//
//	pd := analysis.NewPeakDecay(analysis.DecayConfig{
//	    SampleRate: 48000,
//	    Duration:   analysis.DefaultPeakDecay,
//	})
//	peak := pd.ProcessBlock(left)
//
//	est, err := analysis.NewR128Estimator(48000, 2)
//	if err != nil {
//	    return err
//	}
//	est.AddFramesPlanar([][]float32{left, right})
//	if lufs, err := est.Momentary(); err == nil {
//	    fmt.Printf("%.1f LUFS\n", lufs)
//	}
package analysis
