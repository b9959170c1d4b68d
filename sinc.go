// sinc.go builds the precomputed, Hamming-windowed, oversampled sinc
// lookup table used by the convolution kernel. The table is built once at
// construction time; the hot path only ever reads it.

package resampler

import "math"

// sincTable is a windowed-sinc lookup table oversampled by windowInterp.
// It holds windowLen*windowInterp+2 entries: the last two are always zero
// so the kernel can read table[k] and table[k+1] without bounds checks,
// even when k lands on the last valid index.
type sincTable struct {
	values           []float32
	windowLen        int
	windowInterp     int
	windowInterpBits int
}

// newSincTable computes T[0] = 1 and, for i in [1, N), T[i] = sinc(t) *
// hamming(i) where t = i/windowInterp, N = windowLen*windowInterp + 2.
func newSincTable(windowLen, windowInterp int) *sincTable {
	n := windowLen*windowInterp + 2
	values := make([]float32, n)
	values[0] = 1.0

	invInterp := 1.0 / float64(windowInterp)
	for i := 1; i < n; i++ {
		t := float64(i) * invInterp
		w := 0.54 - 0.46*math.Cos(2*math.Pi*(float64(i-1)/(2*float64(n))+0.5))
		values[i] = float32(math.Sin(math.Pi*t) / (math.Pi * t) * w)
	}

	values[n-2] = 0
	values[n-1] = 0

	return &sincTable{
		values:           values,
		windowLen:        windowLen,
		windowInterp:     windowInterp,
		windowInterpBits: calcBits(windowInterp),
	}
}

// maxIndex is the highest table index lookup ever reads: the k+1 read
// when k is clamped to len(values)-2; see the open question in SPEC_FULL.md
// §10 about the disabled debug assert in the original source.
func (s *sincTable) maxIndex() int {
	return s.windowLen*s.windowInterp + 1
}

// lookup returns the interpolated sinc value at Q8.24 position qtSincCur.
// fFract is the fractional part of qtSincCur already shifted into the
// table's oversampled domain (kernel.go computes it at the first tap on
// each side of the origin and reuses it for the remaining taps on that
// side, rather than recomputing it per tap).
func (s *sincTable) lookup(qtSincCur fixed, fFract float32) float32 {
	k := int(qtSincCur >> (fracBits - s.windowInterpBits))
	if k < 0 {
		k = 0
	}
	if k > len(s.values)-2 {
		k = len(s.values) - 2
	}
	lo := s.values[k]
	hi := s.values[k+1]
	return lo + fFract*(hi-lo)
}
