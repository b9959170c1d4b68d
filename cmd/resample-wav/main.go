// Command resample-wav resamples a WAV file through the resampler
// package, driving it window-by-window via a FrameSource and the
// StreamReader wrapper in stream.go.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/pflag"

	charmlog "github.com/charmbracelet/log"

	"github.com/thesyncim/resampler"
	"github.com/thesyncim/resampler/internal/pcmutil"
)

var (
	inPath       = pflag.StringP("in", "i", "", "input WAV path")
	outPath      = pflag.StringP("out", "o", "", "output WAV path")
	scaling      = pflag.Float64P("scaling", "s", 1.0, "output-time-per-input-time ratio (>1 decimates, <1 interpolates)")
	windowLen    = pflag.IntP("window-len", "w", 32, "sinc window half-length in samples")
	windowInterp = pflag.IntP("window-interp", "n", 256, "sinc table oversampling factor, must be a power of two")
	frameSize    = pflag.IntP("frame-size", "f", 128, "interleaved samples per processing frame")
	softClip     = pflag.Bool("soft-clip", true, "apply soft clipping before int16 quantization")
	verbose      = pflag.BoolP("verbose", "v", false, "enable debug logging")
)

func main() {
	pflag.Parse()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "resample-wav"})
	if *verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}

	if *inPath == "" || *outPath == "" {
		logger.Error("both --in and --out are required")
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(logger); err != nil {
		logger.Error("resample-wav failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *charmlog.Logger) error {
	inFile, err := os.Open(*inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inFile.Close()

	dec := wav.NewDecoder(inFile)
	if !dec.IsValidFile() {
		return fmt.Errorf("%s is not a valid WAV file", *inPath)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decode PCM: %w", err)
	}

	channels := buf.Format.NumChannels
	sampleRate := buf.Format.SampleRate
	logger.Debug("decoded input", "channels", channels, "sampleRate", sampleRate, "frames", buf.NumFrames())

	signal := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		signal[i] = intSampleToFloat(v, buf.SourceBitDepth)
	}

	mask := resampler.ChannelMask((1 << uint(channels)) - 1)
	cfg := resampler.Config{
		Channels:     mask,
		FrameSize:    *frameSize,
		WindowLen:    *windowLen,
		WindowInterp: *windowInterp,
	}
	r, err := resampler.New(cfg, resampler.WithLogger(resampler.NewCharmLogger(logger)))
	if err != nil {
		return fmt.Errorf("construct resampler: %w", err)
	}

	if !r.SetScaling(float32(*scaling)) {
		return fmt.Errorf("scaling %v does not fit window_len=%d frame_size=%d", *scaling, *windowLen, *frameSize)
	}

	source := &sliceSource{signal: signal, frameSize: r.FrameSize()}
	var sink sliceSink

	sr, err := resampler.NewStreamReader(r, source, resampler.FormatFloat32LE)
	if err != nil {
		return fmt.Errorf("new stream reader: %w", err)
	}

	group := make([]float32, channels)
	buf32 := make([]byte, channels*4)
	for {
		n, rerr := sr.Read(buf32)
		if n > 0 {
			samplesFromBytes(buf32[:n], group)
			if *softClip {
				pcmutil.SoftLimit(group)
			}
			sink.append(group)
		}
		if rerr != nil {
			break
		}
	}

	outFile, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, sampleRate, 16, channels, 1)
	outBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           sink.toInt(),
		SourceBitDepth: 16,
	}
	if err := enc.Write(outBuf); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	logger.Info("resample complete", "inputFrames", buf.NumFrames(), "outputFrames", len(sink.samples)/channels, "scaling", *scaling)
	return nil
}

// sliceSource implements resampler.FrameSource over an in-memory slice,
// yielding frame_size-sized chunks (zero-padding the final chunk).
type sliceSource struct {
	signal    []float32
	frameSize int
	offset    int
}

func (s *sliceSource) NextFrame() ([]float32, error) {
	if s.offset >= len(s.signal) {
		return nil, io.EOF
	}
	frame := make([]float32, s.frameSize)
	n := copy(frame, s.signal[s.offset:])
	s.offset += n
	return frame, nil
}

type sliceSink struct {
	samples []float32
}

func (s *sliceSink) append(group []float32) {
	s.samples = append(s.samples, group...)
}

func (s *sliceSink) toInt() []int {
	out := make([]int, len(s.samples))
	for i, v := range s.samples {
		out[i] = int(pcmutil.FloatToInt16(v))
	}
	return out
}

// intSampleToFloat normalizes a decoded PCM sample to roughly [-1, 1] given the
// source WAV's bit depth (mirrors go-audio-based auditory tooling's
// per-bit-depth normalization).
func intSampleToFloat(v, sourceBitDepth int) float32 {
	switch sourceBitDepth {
	case 32:
		return float32(v) / float32(0x7FFFFFFF)
	case 24:
		return float32(v) / float32(0x7FFFFF)
	case 8:
		return float32(v) / float32(0x7F)
	default: // 16
		return float32(v) / float32(0x7FFF)
	}
}

func samplesFromBytes(b []byte, out []float32) {
	for i := range out {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		out[i] = math.Float32frombits(bits)
	}
}
