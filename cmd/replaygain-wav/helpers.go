package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-replaygain"
)

// Bit depths accepted from WAV input.
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
)

const (
	monoChannels   = 1
	stereoChannels = 2

	// fullScaleBits is the bit depth the analyzer's ±32768 full-scale
	// convention corresponds to.
	fullScaleBits = 16
)

// wavInput holds a validated input file and its format information.
type wavInput struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
}

// openWAVInput opens and validates a WAV file.
func openWAVInput(path string, verbose bool) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	in := &wavInput{
		file:     f,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: int(decoder.BitDepth),
	}

	if in.channels != monoChannels && in.channels != stereoChannels {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %d channels, only mono and stereo are supported", path, in.channels)
	}
	if _, err := pcmScale(in.bitDepth); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if verbose {
		log.Printf("%s: %d Hz, %d channels, %d-bit", path, in.rate, in.channels, in.bitDepth)
	}

	return in, nil
}

// Close closes the input file.
func (w *wavInput) Close() error {
	return w.file.Close()
}

// pcmScale returns the factor converting integer PCM at the given bit depth
// to the analyzer's 16-bit full-scale convention.
func pcmScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return 1.0 / float64(int64(1)<<(bitDepth-fullScaleBits)), nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}

// deinterleave converts one decoded chunk of interleaved integer PCM into
// per-channel float64 slices at 16-bit full scale. left and right must each
// have capacity for n/channels samples; for mono, right is left untouched.
func deinterleave(data []int, n, channels int, scale float64, left, right []float64) (frames int) {
	frames = n / channels
	if channels == monoChannels {
		for i := 0; i < frames; i++ {
			left[i] = float64(data[i]) * scale
		}
		return frames
	}
	for i := 0; i < frames; i++ {
		left[i] = float64(data[2*i]) * scale
		right[i] = float64(data[2*i+1]) * scale
	}
	return frames
}

// feedWAV streams the file's PCM through the analyzer in chunks.
func feedWAV(analyzer *replaygain.Analyzer, in *wavInput, chunkFrames int) error {
	scale, err := pcmScale(in.bitDepth)
	if err != nil {
		return err
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: in.channels, SampleRate: in.rate},
		Data:   make([]int, chunkFrames*in.channels),
	}
	left := make([]float64, chunkFrames)
	right := make([]float64, chunkFrames)

	for {
		n, err := in.decoder.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode failed: %w", err)
		}
		if n == 0 {
			return nil
		}

		frames := deinterleave(buf.Data, n, in.channels, scale, left, right)
		if in.channels == monoChannels {
			err = analyzer.AnalyzeMono(left[:frames])
		} else {
			err = analyzer.AnalyzeStereo(left[:frames], right[:frames])
		}
		if err != nil {
			return err
		}
	}
}
