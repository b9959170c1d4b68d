// Package resampler implements a streaming, windowed-sinc audio resampler
// for real-time PCM transport.
//
// It converts a continuous stream of interleaved float32 PCM frames from one
// sample rate to another (or, equivalently, applies a slowly varying
// time-scaling factor driven by a clock-skew estimate) with low latency and
// bounded per-sample cost.
//
// The resampler is single-threaded, synchronous, and allocates once at
// construction (the sinc coefficient table). It borrows three adjacent
// input frames at a time (prev/curr/next) and writes into a caller-supplied
// output frame until the current window is exhausted, at which point the
// caller rotates its buffers and calls RenewBuffers again.
//
// # Hot path
//
// ResampleBuff and the underlying convolution kernel do only integer Q8.24
// arithmetic, table lookups, and one linear interpolation per sample. No
// allocation, no logging, and no locking happen on this path.
//
// # Skew tracking
//
// SetScaling may be called at any time with a new scaling factor (typically
// in [0.95, 1.05] when driven by a clock-skew estimator); the cursor step
// is latched at the next RenewBuffers call, while the filter's sinc step,
// half-window width and gain follow the new value at once. SkewController wraps this in a small PI
// control loop for callers tracking a remote clock directly.
package resampler
