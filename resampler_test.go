package resampler_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/resampler"
)

func monoConfig(channelLen, windowLen, windowInterp int) resampler.Config {
	return resampler.Config{
		Channels:     0b1,
		FrameSize:    channelLen,
		WindowLen:    windowLen,
		WindowInterp: windowInterp,
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  resampler.Config
	}{
		{"no channels", resampler.Config{Channels: 0, FrameSize: 64, WindowLen: 16, WindowInterp: 128}},
		{"frame size not multiple of channels", resampler.Config{Channels: 0b11, FrameSize: 65, WindowLen: 16, WindowInterp: 128}},
		{"window_interp not power of two", resampler.Config{Channels: 0b1, FrameSize: 64, WindowLen: 16, WindowInterp: 100}},
		{"window too large", resampler.Config{Channels: 0b1, FrameSize: 64, WindowLen: 64, WindowInterp: 128}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := resampler.New(c.cfg)
			require.Error(t, err)
			require.Nil(t, r)
		})
	}
}

// driver feeds a mono/stereo signal through r, rotating prev/curr/next
// frames, and returns every output sample produced. It runs two extra
// rotations past the end of frames (feeding silence) so the window
// fully drains the tail of the real signal.
func driver(t *testing.T, r *resampler.Resampler, frames [][]float32) []float32 {
	t.Helper()

	frameSize := r.FrameSize()
	zero := make([]float32, frameSize)

	frameAt := func(i int) []float32 {
		if i >= 0 && i < len(frames) {
			return frames[i]
		}
		return zero
	}

	// Pull exactly one channel-group at a time: ResampleBuff either
	// writes that whole group and returns true, or (window exhausted)
	// writes nothing and returns false. This sidesteps tracking the
	// unexported resumption offset from outside the package.
	group := make([]float32, r.ChannelsNum())

	var out []float32
	totalRotations := len(frames) + 2
	for rot := 0; rot < totalRotations; rot++ {
		prev := frameAt(rot - 1)
		curr := frameAt(rot)
		next := frameAt(rot + 1)

		r.RenewBuffers(prev, curr, next)

		for r.ResampleBuff(group) {
			out = append(out, group...)
		}
	}

	return out
}

func TestImpulseResponseScenario1(t *testing.T) {
	const channelLen = 64
	cfg := monoConfig(channelLen, 16, 128)
	r, err := resampler.New(cfg)
	require.NoError(t, err)
	require.True(t, r.IsValid())

	curr := make([]float32, channelLen)
	curr[8] = 1.0
	frames := [][]float32{curr}

	out := driver(t, r, frames)

	peak := float32(0)
	peakIdx := -1
	for i, v := range out {
		if v > peak {
			peak = v
			peakIdx = i
		}
	}

	// peak should land at output index aligned with input sample 8.
	assert.InDelta(t, 8, peakIdx, 1)
	assert.InDelta(t, 1.0, peak, 0.05)
}

func TestSineIdentityScenario2(t *testing.T) {
	const channelLen = 64
	cfg := monoConfig(channelLen, 16, 128)
	r, err := resampler.New(cfg)
	require.NoError(t, err)

	const freq = 0.1 * math.Pi // 0.1 Nyquist
	total := channelLen * 5
	signal := make([]float32, total)
	for i := range signal {
		signal[i] = float32(math.Sin(float64(i) * freq))
	}

	var frames [][]float32
	for i := 0; i+channelLen <= total; i += channelLen {
		frames = append(frames, signal[i:i+channelLen])
	}

	out := driver(t, r, frames)

	// Output should match the input delayed by windowLen samples.
	delay := 16
	var sumSq, sumErrSq float64
	count := 0
	for i := delay; i+delay < len(out) && i < len(signal); i++ {
		want := float64(signal[i-delay])
		got := float64(out[i])
		sumSq += want * want
		sumErrSq += (want - got) * (want - got)
		count++
	}
	require.Greater(t, count, 0)
	rmsErr := math.Sqrt(sumErrSq / float64(count))
	rmsSig := math.Sqrt(sumSq / float64(count))
	assert.Less(t, rmsErr/rmsSig, 0.02)
}

// rms returns the root-mean-square of x.
func rms(x []float32) float64 {
	var sumSq float64
	for _, v := range x {
		sumSq += float64(v) * float64(v)
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

// sineSignal builds n samples of a unit-amplitude sine at freq radians
// per sample.
func sineSignal(n int, freq float64) []float32 {
	signal := make([]float32, n)
	for i := range signal {
		signal[i] = float32(math.Sin(float64(i) * freq))
	}
	return signal
}

func toFrames(signal []float32, channelLen int) [][]float32 {
	var frames [][]float32
	for i := 0; i+channelLen <= len(signal); i += channelLen {
		frames = append(frames, signal[i:i+channelLen])
	}
	return frames
}

func TestDecimationScenario3(t *testing.T) {
	const channelLen = 64

	// Exactly 1 buffer rotation: at scaling=2.0, channel_len=64, the
	// window (64 input samples) is exhausted after exactly 32 outputs
	// (N*scaling >= channel_len <=> N >= 32).
	t.Run("exactly 1 buffer rotation for 32 outputs", func(t *testing.T) {
		cfg := monoConfig(channelLen, 16, 128)
		r, err := resampler.New(cfg)
		require.NoError(t, err)
		require.True(t, r.SetScaling(2.0))

		zero := make([]float32, channelLen)
		r.RenewBuffers(zero, zero, zero)

		group := make([]float32, 1)
		count := 0
		for r.ResampleBuff(group) {
			count++
		}
		assert.Equal(t, 32, count, "output samples produced before window exhaustion")
	})

	// Frequency selectivity: decimating by 2 halves the usable passband,
	// so a 0.25-Nyquist sinusoid (well inside the post-decimation
	// passband) should survive largely undistorted, while a 0.6-Nyquist
	// sinusoid (past the post-decimation Nyquist at 0.5) should come out
	// markedly attenuated relative to it.
	t.Run("passes low frequency, attenuates high frequency", func(t *testing.T) {
		const refRMS = 0.70710678 // RMS of a unit-amplitude sine

		runAt := func(freq float64) float64 {
			cfg := monoConfig(channelLen, 16, 128)
			r, err := resampler.New(cfg)
			require.NoError(t, err)
			require.True(t, r.SetScaling(2.0))

			total := channelLen * 8
			frames := toFrames(sineSignal(total, freq*math.Pi), channelLen)
			out := driver(t, r, frames)
			require.NotEmpty(t, out)

			// Drop the leading window-length samples: convolution
			// startup transient from the zero prev buffer.
			settled := out[16:]
			return rms(settled)
		}

		lowRMS := runAt(0.25)
		highRMS := runAt(0.6)

		lowAttenDB := 20 * math.Log10(lowRMS/refRMS)
		relativeAttenDB := 20 * math.Log10(highRMS/lowRMS)

		assert.Greater(t, lowAttenDB, -3.0, "0.25-Nyquist sinusoid should pass largely undistorted")
		assert.Less(t, relativeAttenDB, -6.0, "0.6-Nyquist sinusoid should be markedly attenuated relative to the 0.25-Nyquist case")
	})
}

func TestInterpolationScenario4(t *testing.T) {
	const channelLen = 64

	// Rotation point: at scaling=0.5, channel_len=64, the window is
	// exhausted after exactly 128 outputs (N*scaling >= channel_len <=>
	// N >= 128). This is the mathematically exact count derived from
	// the driver's qt_sample/qt_dt/qt_window_size arithmetic; it is
	// larger than spec.md §8 scenario 4's approximate "~64 outputs"
	// figure, which conflates input samples traversed with output
	// samples produced (see DESIGN.md).
	t.Run("1 buffer rotation for 128 outputs", func(t *testing.T) {
		cfg := monoConfig(channelLen, 16, 128)
		r, err := resampler.New(cfg)
		require.NoError(t, err)
		require.True(t, r.SetScaling(0.5))

		curr := make([]float32, channelLen)
		for i := range curr {
			curr[i] = float32(i) / float32(channelLen)
		}
		r.RenewBuffers(curr, curr, curr)

		group := make([]float32, 1)
		count := 0
		for r.ResampleBuff(group) {
			count++
		}
		assert.Equal(t, 128, count, "output samples produced before window exhaustion")
	})

	// Alignment: at scaling=0.5, qt_dt is exactly 0.5 in Q8.24 (no
	// rounding), so qt_sample visits only exact multiples of 0.5 and
	// lands back on exactly 0 at the start of every rotation (64.0 -
	// 64.0 = 0). So within a steady-state rotation (prev/curr/next all
	// identical), every even output index N corresponds to exactly
	// curr[N/2], and the epsilon snap plus the sinc kernel's zero-
	// crossing at integer lags should reproduce it within a small error.
	t.Run("integer-aligned outputs match the input sample", func(t *testing.T) {
		cfg := monoConfig(channelLen, 16, 128)
		r, err := resampler.New(cfg)
		require.NoError(t, err)
		require.True(t, r.SetScaling(0.5))

		curr := make([]float32, channelLen)
		for i := range curr {
			curr[i] = float32(i) / float32(channelLen)
		}

		group := make([]float32, 1)
		drain := func() []float32 {
			var out []float32
			for r.ResampleBuff(group) {
				out = append(out, group[0])
			}
			return out
		}

		// Warm up one rotation so boundary effects from the zero-valued
		// initial state have cycled out before the rotation we measure.
		r.RenewBuffers(curr, curr, curr)
		drain()

		r.RenewBuffers(curr, curr, curr)
		out := drain()
		require.Len(t, out, 128)

		checked := 0
		for outIdx := 0; outIdx < len(out); outIdx += 2 {
			inIdx := outIdx / 2
			assert.InDelta(t, curr[inIdx], out[outIdx], 0.05, "output[%d] should match input[%d]", outIdx, inIdx)
			checked++
		}
		require.Equal(t, 64, checked)
	})
}

func TestSetScalingRejectsTooLarge(t *testing.T) {
	cfg := monoConfig(64, 16, 128)
	r, err := resampler.New(cfg)
	require.NoError(t, err)

	before := r.Scaling()
	ok := r.SetScaling(10.0)
	assert.False(t, ok)
	assert.Equal(t, before, r.Scaling())
}

func TestStereoLeftOnlyImpulseKeepsRightZero(t *testing.T) {
	const channelLen = 64
	cfg := resampler.Config{
		Channels:     0b11,
		FrameSize:    channelLen * 2,
		WindowLen:    16,
		WindowInterp: 128,
	}
	r, err := resampler.New(cfg)
	require.NoError(t, err)
	require.Equal(t, 2, r.ChannelsNum())

	curr := make([]float32, channelLen*2)
	curr[8*2] = 1.0 // left channel, sample 8

	frames := [][]float32{curr}
	out := driver(t, r, frames)

	for i := 1; i < len(out); i += 2 {
		if out[i] != 0 {
			t.Fatalf("right channel sample %d = %v, want 0", i/2, out[i])
		}
	}
}

func TestRenewBuffersPanicsOnWrongSize(t *testing.T) {
	cfg := monoConfig(64, 16, 128)
	r, err := resampler.New(cfg)
	require.NoError(t, err)

	assert.Panics(t, func() {
		r.RenewBuffers(make([]float32, 10), make([]float32, 64), make([]float32, 64))
	})
}

func TestResampleBuffPanicsBeforeRenewBuffers(t *testing.T) {
	cfg := monoConfig(64, 16, 128)
	r, err := resampler.New(cfg)
	require.NoError(t, err)

	assert.Panics(t, func() {
		r.ResampleBuff(make([]float32, 64))
	})
}
