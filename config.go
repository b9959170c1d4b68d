// config.go validates construction-time configuration for a Resampler,
// mirroring the original's check_config_().

package resampler

import "math/bits"

// ChannelMask identifies which channels are present in a frame, one bit
// per channel. channelsNum is the number of set bits; the core has no
// notion of channel identity beyond that count, so the mask only needs
// to encode which channels exist, not which physical channel each bit
// names.
type ChannelMask uint32

// NumChannels returns the number of channels selected by the mask.
func (m ChannelMask) NumChannels() int {
	return bits.OnesCount32(uint32(m))
}

// Config holds the construction-time parameters for a Resampler.
type Config struct {
	// Channels selects which channels are present; NumChannels() of it
	// becomes channelsNum.
	Channels ChannelMask

	// FrameSize is the total interleaved length of each of the three
	// frame buffers (channelLen = FrameSize / channelsNum).
	FrameSize int

	// WindowLen is the half-width of the sinc window in input samples.
	WindowLen int

	// WindowInterp is the oversampling factor of the sinc table; must be
	// a power of two.
	WindowInterp int
}

// validate checks the configuration the way the original's
// check_config_() does, returning the first violated invariant, and
// returns the derived channelsNum/channelLen on success.
func (c Config) validate() (channelsNum, channelLen int, err error) {
	channelsNum = c.Channels.NumChannels()
	if channelsNum < 1 {
		return 0, 0, ErrInvalidChannels
	}

	if c.FrameSize%channelsNum != 0 {
		return 0, 0, ErrFrameSizeMismatch
	}
	channelLen = c.FrameSize / channelsNum

	// channelLen must fit the integer part of a Q8.24 value: qtWindowSize
	// = channelLen << fracBits must not overflow.
	maxChannelLen := int((^fixed(0)) >> fracBits)
	if channelLen > maxChannelLen {
		return 0, 0, ErrFrameSizeOverflow
	}

	if !isPowerOfTwo(c.WindowInterp) {
		return 0, 0, ErrWindowInterpNotPow2
	}

	if c.WindowLen >= channelLen {
		return 0, 0, ErrWindowTooLarge
	}

	return channelsNum, channelLen, nil
}
