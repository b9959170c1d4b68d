// resampler.go implements the streaming driver: construction, scaling
// changes, buffer rotation, and output-frame production. This is the
// state machine described in spec.md §4.4.

package resampler

// Option configures a Resampler at construction time.
type Option func(*Resampler)

// WithLogger supplies a Logger used for configuration and scaling
// diagnostics. The default is a no-op logger.
func WithLogger(l Logger) Option {
	return func(r *Resampler) { r.logger = l }
}

// Resampler converts a stream of interleaved PCM frames from one sample
// rate to another via a windowed-sinc filter driven by Q8.24 fixed-point
// time arithmetic. It is not safe for concurrent use; it is synchronous
// and single-threaded (spec.md §5).
type Resampler struct {
	channelsNum int
	channelLen  int
	windowLen   int

	sincTable *sincTable

	scaling    float32
	cutoffFreq float32

	qtSample        fixed
	qtDt            fixed
	qtSincStep      fixed
	qtHalfWindowLen fixed
	qtWindowSize    fixed
	qtEpsilon       fixed

	prev, curr, next []float32
	outFrameI        int

	valid  bool
	logger Logger
}

// New constructs a Resampler from cfg. Configuration errors (invalid
// channel mask, frame size that doesn't divide evenly, window_interp not
// a power of two, or a window too large for the frame at scaling 1.0)
// are reported by returning a non-nil error; construction never panics
// for bad configuration.
func New(cfg Config, opts ...Option) (*Resampler, error) {
	r := &Resampler{
		logger:     noopLogger{},
		cutoffFreq: 0.9,
	}
	for _, opt := range opts {
		opt(r)
	}

	channelsNum, channelLen, err := cfg.validate()
	if err != nil {
		r.logger.Errorf("resampler: invalid config: %v", err)
		return nil, err
	}

	r.channelsNum = channelsNum
	r.channelLen = channelLen
	r.windowLen = cfg.WindowLen
	r.sincTable = newSincTable(cfg.WindowLen, cfg.WindowInterp)
	r.qtWindowSize = fixed(channelLen << fracBits)
	r.qtEpsilon = fromFloat(5e-8)

	if !r.SetScaling(1.0) {
		// cfg.validate already checked WindowLen < channelLen at
		// scaling 1.0, so this cannot happen.
		return nil, ErrWindowTooLarge
	}

	r.valid = true
	return r, nil
}

// IsValid reports whether construction succeeded.
func (r *Resampler) IsValid() bool {
	return r.valid
}

// ChannelsNum returns the number of interleaved channels this Resampler
// was constructed for.
func (r *Resampler) ChannelsNum() int {
	return r.channelsNum
}

// ChannelLen returns the number of samples per channel each frame buffer
// must hold.
func (r *Resampler) ChannelLen() int {
	return r.channelLen
}

// FrameSize returns the required length of each of the three frame
// buffers passed to RenewBuffers.
func (r *Resampler) FrameSize() int {
	return r.channelLen * r.channelsNum
}

// Scaling returns the scaling factor most recently accepted by
// SetScaling; the cursor step picks it up at the next RenewBuffers call.
func (r *Resampler) Scaling() float32 {
	return r.scaling
}

// SetScaling changes the output-time-per-input-time ratio. It fails and
// leaves all state unchanged if windowLen*s would no longer fit
// channelLen. The cursor step (qtDt) only picks up the change at the
// next RenewBuffers call (spec.md §9, "latched scaling"); the sinc step,
// half-window width and decimation gain compensation change immediately.
func (r *Resampler) SetScaling(s float32) bool {
	if float64(r.windowLen)*float64(s) >= float64(r.channelLen) {
		r.logger.Errorf("resampler: scaling does not fit frame size: window=%d channel_len=%d scaling=%.5f",
			r.windowLen, r.channelLen, s)
		return false
	}

	r.scaling = s
	if s > 1.0 {
		r.qtSincStep = fromFloat(r.cutoffFreq / s)
		r.qtHalfWindowLen = fromFloat(float32(r.windowLen) / r.cutoffFreq * s)
	} else {
		r.qtSincStep = fromFloat(r.cutoffFreq)
		r.qtHalfWindowLen = fromFloat(float32(r.windowLen) / r.cutoffFreq)
	}
	return true
}

// RenewBuffers hands the state machine its next window of three adjacent,
// equal-sized frames. prev, curr, and next are borrowed: they must remain
// valid and unmodified until the next RenewBuffers call. Passing nil or
// mis-sized buffers, or calling this on an invalid Resampler, is a
// contract violation and panics immediately (spec.md §7).
func (r *Resampler) RenewBuffers(prev, curr, next []float32) {
	if !r.valid {
		contractViolation("RenewBuffers", "resampler failed construction")
	}

	frameSize := r.FrameSize()
	if len(prev) != frameSize || len(curr) != frameSize || len(next) != frameSize {
		contractViolation("RenewBuffers", "buffer size does not match frame_size")
	}

	if r.qtSample >= r.qtWindowSize {
		r.qtSample -= r.qtWindowSize
	}

	// Scaling may change every frame via SetScaling, so it must only be
	// latched here — never mid-frame inside ResampleBuff.
	r.qtDt = fromFloat(r.scaling)

	r.prev = prev
	r.curr = curr
	r.next = next
}

// ResampleBuff writes resampled output samples into out, starting from
// wherever the previous call left off, until out is filled (returns true)
// or the current window is exhausted (returns false, meaning the caller
// must rotate its buffers and call RenewBuffers again before resuming).
// out's length must be a multiple of channelsNum.
func (r *Resampler) ResampleBuff(out []float32) bool {
	if !r.valid {
		contractViolation("ResampleBuff", "resampler failed construction")
	}
	if r.curr == nil {
		contractViolation("ResampleBuff", "RenewBuffers must be called before ResampleBuff")
	}
	if len(out)%r.channelsNum != 0 {
		contractViolation("ResampleBuff", "output length is not a multiple of channels_num")
	}

	for ; r.outFrameI < len(out); r.outFrameI += r.channelsNum {
		if r.qtSample >= r.qtWindowSize {
			return false
		}

		// Epsilon snap: move the cursor onto an integer input-sample
		// position when it lies within qtEpsilon of one. qtEpsilon is
		// fromFloat(5e-8), which truncates to 0 in Q8.24, so neither
		// branch changes the cursor.
		frac := r.qtSample & fractMask
		switch {
		case frac < r.qtEpsilon:
			r.qtSample &= intMask
		case qtOne-frac < r.qtEpsilon:
			r.qtSample = (r.qtSample & intMask) + qtOne
		}

		for c := 0; c < r.channelsNum; c++ {
			out[r.outFrameI+c] = r.sampleForChannel(c)
		}

		r.qtSample += r.qtDt
	}

	r.outFrameI = 0
	return true
}
