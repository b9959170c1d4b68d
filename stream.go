// stream.go implements streaming io.Reader/io.Writer convenience wrappers
// around a Resampler. These sit outside the core state machine — they
// own the buffer rotation for a caller that would rather hand over a
// FrameSource/FrameSink or plain io.Reader/io.Writer than drive
// RenewBuffers/ResampleBuff itself (spec.md §6, "Frame source"/"Frame
// sink" collaborators). The core type itself still does no I/O.

package resampler

import (
	"encoding/binary"
	"io"
	"math"
)

// Streaming API
//
// StreamReader pulls fixed-size input frames from a FrameSource, rotates
// them through a Resampler, and serves the resampled output as bytes via
// io.Reader:
//
//	source := &MyFrameSource{} // implements FrameSource
//	sr, err := resampler.NewStreamReader(r, source, resampler.FormatFloat32LE)
//	io.Copy(dst, sr)
//
// StreamWriter is the inverse: it accepts raw input PCM bytes via
// io.Writer, buffers them into frame-sized chunks, and forwards
// resampled output frames to a FrameSink.

// SampleFormat specifies the PCM sample format used at the byte-oriented
// edges of the streaming wrappers; the core Resampler itself only ever
// sees []float32 (spec.md's Non-goal: no sample-format conversion in the
// core).
type SampleFormat int

const (
	// FormatFloat32LE is 32-bit float, little-endian (4 bytes/sample).
	FormatFloat32LE SampleFormat = iota
	// FormatInt16LE is 16-bit signed integer, little-endian (2 bytes/sample).
	FormatInt16LE
)

// BytesPerSample returns the number of bytes per sample for the format.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatFloat32LE:
		return 4
	case FormatInt16LE:
		return 2
	default:
		return 4
	}
}

// FrameSource supplies fixed-size interleaved input frames for streaming
// resampling. Each frame must have length == Resampler.FrameSize().
// Implementations should return io.EOF when no more frames are available.
type FrameSource interface {
	NextFrame() ([]float32, error)
}

// FrameSink receives resampled output frames.
type FrameSink interface {
	WriteFrame(samples []float32) error
}

// StreamReader drives a Resampler's prev/curr/next rotation from a
// FrameSource and exposes the resampled output as an io.Reader.
type StreamReader struct {
	r      *Resampler
	source FrameSource
	format SampleFormat

	prev, curr, next []float32
	started          bool
	sourceEOF        bool

	group   []float32
	byteBuf []byte
	offset  int
}

// NewStreamReader creates a StreamReader. r must already be valid.
func NewStreamReader(r *Resampler, source FrameSource, format SampleFormat) (*StreamReader, error) {
	if !r.IsValid() {
		return nil, ErrWindowTooLarge
	}
	return &StreamReader{
		r:      r,
		source: source,
		format: format,
		group:  make([]float32, r.ChannelsNum()),
	}, nil
}

// zeroFrame returns a silence frame sized to the resampler's frame size,
// used once the source is exhausted so the window can drain its tail.
func (sr *StreamReader) zeroFrame() []float32 {
	return make([]float32, sr.r.FrameSize())
}

// nextFrame pulls one frame from the source, substituting silence once
// the source reports io.EOF so the last real frame's tail still drains
// through the window.
func (sr *StreamReader) nextFrame() []float32 {
	if sr.sourceEOF {
		return sr.zeroFrame()
	}
	f, err := sr.source.NextFrame()
	if err == io.EOF {
		sr.sourceEOF = true
		return sr.zeroFrame()
	}
	if err != nil {
		sr.sourceEOF = true
		return sr.zeroFrame()
	}
	return f
}

// fillGroup produces the next resampled sample group (one sample per
// channel), rotating buffers as needed. Returns false once the source is
// exhausted and the window has nothing left to drain.
func (sr *StreamReader) fillGroup() bool {
	if !sr.started {
		sr.prev = sr.zeroFrame()
		sr.curr = sr.nextFrame()
		sr.next = sr.nextFrame()
		sr.r.RenewBuffers(sr.prev, sr.curr, sr.next)
		sr.started = true
	}

	for {
		if sr.r.ResampleBuff(sr.group) {
			return true
		}
		if sr.sourceEOF && allZero(sr.curr) && allZero(sr.next) {
			return false
		}
		sr.prev, sr.curr, sr.next = sr.curr, sr.next, sr.nextFrame()
		sr.r.RenewBuffers(sr.prev, sr.curr, sr.next)
	}
}

func allZero(s []float32) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// Read implements io.Reader, reading resampled PCM bytes.
func (sr *StreamReader) Read(p []byte) (int, error) {
	if sr.offset >= len(sr.byteBuf) {
		if !sr.fillGroup() {
			return 0, io.EOF
		}
		sr.byteBuf = samplesToBytes(sr.group, sr.format)
		sr.offset = 0
	}

	n := copy(p, sr.byteBuf[sr.offset:])
	sr.offset += n
	return n, nil
}

func samplesToBytes(samples []float32, format SampleFormat) []byte {
	switch format {
	case FormatInt16LE:
		buf := make([]byte, len(samples)*2)
		for i, s := range samples {
			scaled := s * 32767.0
			var v int16
			switch {
			case scaled > 32767:
				v = 32767
			case scaled < -32768:
				v = -32768
			default:
				v = int16(scaled)
			}
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		}
		return buf
	default: // FormatFloat32LE
		buf := make([]byte, len(samples)*4)
		for i, s := range samples {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
		}
		return buf
	}
}

// StreamWriter buffers raw input PCM bytes into frame-sized chunks, runs
// them through a Resampler, and forwards resampled output frames to a
// FrameSink.
type StreamWriter struct {
	r      *Resampler
	sink   FrameSink
	format SampleFormat

	pending []byte // undecoded input bytes

	prev, curr, next []float32
	pendingFrames    [][]float32
	started          bool

	group []float32
}

// NewStreamWriter creates a StreamWriter. r must already be valid.
func NewStreamWriter(r *Resampler, sink FrameSink, format SampleFormat) (*StreamWriter, error) {
	if !r.IsValid() {
		return nil, ErrWindowTooLarge
	}
	return &StreamWriter{
		r:      r,
		sink:   sink,
		format: format,
		group:  make([]float32, r.ChannelsNum()),
	}, nil
}

// Write implements io.Writer: it decodes raw PCM bytes to float32 frames.
// The first full frame only primes the window; from the second full frame
// on, each frame drives the resampler and output is forwarded to the
// FrameSink.
func (sw *StreamWriter) Write(p []byte) (int, error) {
	sw.pending = append(sw.pending, p...)

	bps := sw.format.BytesPerSample()
	frameBytes := sw.r.FrameSize() * bps

	for len(sw.pending) >= frameBytes {
		frame := bytesToSamples(sw.pending[:frameBytes], sw.format)
		sw.pending = sw.pending[frameBytes:]
		if err := sw.pushFrame(frame); err != nil {
			return len(p), err
		}
	}

	return len(p), nil
}

func (sw *StreamWriter) pushFrame(frame []float32) error {
	if !sw.started {
		sw.prev = make([]float32, sw.r.FrameSize())
		sw.curr = frame
		sw.pendingFrames = nil
		sw.started = true
		return nil
	}

	if sw.next == nil {
		sw.next = frame
		sw.r.RenewBuffers(sw.prev, sw.curr, sw.next)
		return sw.drain()
	}

	sw.prev, sw.curr, sw.next = sw.curr, sw.next, frame
	sw.r.RenewBuffers(sw.prev, sw.curr, sw.next)
	return sw.drain()
}

func (sw *StreamWriter) drain() error {
	for sw.r.ResampleBuff(sw.group) {
		out := make([]float32, len(sw.group))
		copy(out, sw.group)
		if err := sw.sink.WriteFrame(out); err != nil {
			return err
		}
	}
	return nil
}

// Flush pushes one final silence frame so the window drains its tail,
// and returns any error from the sink.
func (sw *StreamWriter) Flush() error {
	if !sw.started {
		return nil
	}
	zero := make([]float32, sw.r.FrameSize())
	return sw.pushFrame(zero)
}

func bytesToSamples(b []byte, format SampleFormat) []float32 {
	switch format {
	case FormatInt16LE:
		out := make([]float32, len(b)/2)
		for i := range out {
			v := int16(binary.LittleEndian.Uint16(b[i*2:]))
			out[i] = float32(v) / 32768.0
		}
		return out
	default: // FormatFloat32LE
		out := make([]float32, len(b)/4)
		for i := range out {
			bits := binary.LittleEndian.Uint32(b[i*4:])
			out[i] = math.Float32frombits(bits)
		}
		return out
	}
}
