// Package pcmutil holds the small sample-format conversion and clipping
// helpers the WAV demo needs at its byte-oriented edges. The core
// resampler package only ever touches []float32 (spec.md's Non-goal: no
// sample-format conversion in the core) — these live here instead.
package pcmutil

import "math"

// FloatToInt16 converts a float32 sample in roughly [-1, 1] to a clamped
// 16-bit signed PCM sample, rounding to nearest-even.
func FloatToInt16(sample float32) int16 {
	scaled := float64(sample) * 32768.0
	if scaled > 32767.0 {
		return 32767
	}
	if scaled < -32768.0 {
		return -32768
	}
	return int16(math.RoundToEven(scaled))
}

// Float64ToInt16 is FloatToInt16 for a float64 source sample.
func Float64ToInt16(sample float64) int16 {
	scaled := sample * 32768.0
	if scaled > 32767.0 {
		return 32767
	}
	if scaled < -32768.0 {
		return -32768
	}
	return int16(math.RoundToEven(scaled))
}

// Int16ToFloat converts a 16-bit signed PCM sample to float32 in [-1, 1).
func Int16ToFloat(sample int16) float32 {
	return float32(sample) / 32768.0
}
