// errors.go defines public error types for the resampler package.

package resampler

import "errors"

// Public configuration error types. These are returned by New and
// SetScaling for problems the caller can inspect and recover from; they
// are never raised via panic.
var (
	// ErrInvalidChannels indicates channelsNum could not be derived from
	// the supplied channel mask (it must select at least one channel).
	ErrInvalidChannels = errors.New("resampler: invalid channel mask (selects no channels)")

	// ErrFrameSizeOverflow indicates channelLen does not fit the integer
	// range addressable by the chosen Q8.24 fixed-point format.
	ErrFrameSizeOverflow = errors.New("resampler: channel_len too large for fixed-point format")

	// ErrFrameSizeMismatch indicates frameSize is not a multiple of
	// channelsNum.
	ErrFrameSizeMismatch = errors.New("resampler: frame_size is not a multiple of channels_num")

	// ErrWindowInterpNotPow2 indicates windowInterp is not a power of two.
	ErrWindowInterpNotPow2 = errors.New("resampler: window_interp is not a power of two")

	// ErrWindowTooLarge indicates window_len is already too large for
	// channel_len even at the default scaling of 1.0.
	ErrWindowTooLarge = errors.New("resampler: window_len does not fit channel_len at scaling=1.0")
)

// ContractError is raised via panic for collaborator bugs: nil or
// mis-sized buffers, or use of a Resampler that failed construction.
// Per spec, these are not recoverable configuration problems — they
// indicate the caller violated the borrowing contract and must be fixed
// in the caller, not handled at runtime.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return "resampler: " + e.Op + ": " + e.Msg
}

func contractViolation(op, msg string) {
	panic(&ContractError{Op: op, Msg: msg})
}
