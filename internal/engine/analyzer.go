// Package engine implements the streaming ReplayGain analysis core: the
// equal-loudness filter cascade, the 50 ms RMS window accumulator and the
// loudness histogram bookkeeping. The public API in the root package wraps
// this engine.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/tphakala/go-replaygain/internal/filter"
	"github.com/tphakala/go-replaygain/internal/histogram"
)

const (
	// windowSeconds is the RMS analysis window duration.
	windowSeconds = 0.050

	// maxSampleRate is the highest supported sample rate.
	maxSampleRate = 96000

	// maxWindowSamples is the largest possible window: ceil(96000 * 0.050).
	// Channel buffers are sized for this so re-initialization at a different
	// rate never reallocates.
	maxWindowSamples = 4800

	// order is the filter history carried across chunk and window
	// boundaries, the larger of the two cascade stage orders.
	order = filter.MaxOrder

	// logGuard keeps the window loudness computation away from log10(0)
	// when a window is entirely silent.
	logGuard = 1e-37
)

// Errors returned by the analysis engine.
var (
	// ErrUnsupportedRate indicates an initialization attempt with a sample
	// rate outside the fixed coefficient table.
	ErrUnsupportedRate = errors.New("unsupported sample rate")

	// ErrInvalidChannels indicates a channel count other than 1 or 2.
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrChannelMismatch indicates stereo input with unequal channel lengths.
	ErrChannelMismatch = errors.New("left and right channel lengths differ")

	// ErrNotInitialized indicates analysis on a context whose last
	// initialization failed.
	ErrNotInitialized = errors.New("analyzer not initialized")

	// ErrWindowOverflow indicates the window accumulator exceeded the window
	// size. This is an internal invariant violation, not a caller error; the
	// accumulation state must be considered corrupt.
	ErrWindowOverflow = errors.New("analysis window overflow")
)

// channelState holds the per-channel delay lines. Each buffer keeps an
// order-sample history prefix ahead of the live region so the causal IIR
// filters never read uninitialized data:
//
//   - inpre: the last order raw samples of the previous chunk, followed by a
//     staged copy of up to order leading samples of the current chunk
//   - step: equal-loudness filter output for the current window, prefixed by
//     the trailing order outputs of the previous window
//   - out: high-pass output, same layout as step
type channelState struct {
	inpre [2 * order]float64
	step  [maxWindowSamples + order]float64
	out   [maxWindowSamples + order]float64
}

func (s *channelState) clear() {
	s.inpre = [2 * order]float64{}
	s.step = [maxWindowSamples + order]float64{}
	s.out = [maxWindowSamples + order]float64{}
}

// Analyzer is the streaming analysis context for one audio stream. It is not
// safe for concurrent use; feed and query calls must be serialized.
type Analyzer struct {
	coeffs     *filter.Coefficients
	sampleRate int
	windowSize int // samples per RMS window: ceil(sampleRate * 0.050)

	left  channelState
	right channelState

	windowSamples int // samples accumulated into the current partial window
	sumLeft       float64
	sumRight      float64

	title histogram.Histogram
	album histogram.Histogram
}

// New creates an analyzer for the given sample rate.
func New(sampleRate int) (*Analyzer, error) {
	a := &Analyzer{}
	if err := a.Init(sampleRate); err != nil {
		return nil, err
	}
	return a, nil
}

// Init re-initializes the analyzer for a new stream at the given sample
// rate. All state is cleared, including the album histogram. On an
// unsupported rate the analyzer is left cleared but unusable until a
// successful Init.
func (a *Analyzer) Init(sampleRate int) error {
	a.resetStreamState()
	a.title.Reset()
	a.album.Reset()

	c, ok := filter.ForRate(sampleRate)
	if !ok {
		a.coeffs = nil
		a.sampleRate = 0
		a.windowSize = 0
		return fmt.Errorf("%w: %d Hz", ErrUnsupportedRate, sampleRate)
	}

	a.coeffs = c
	a.sampleRate = sampleRate
	a.windowSize = int(math.Ceil(float64(sampleRate) * windowSeconds))
	return nil
}

// resetStreamState clears filter histories, the partial window accumulator
// and the running sums. Histograms are left alone.
func (a *Analyzer) resetStreamState() {
	a.left.clear()
	a.right.clear()
	a.windowSamples = 0
	a.sumLeft = 0
	a.sumRight = 0
}

// SampleRate returns the rate the analyzer was initialized with.
func (a *Analyzer) SampleRate() int { return a.sampleRate }

// WindowSize returns the RMS window length in samples.
func (a *Analyzer) WindowSize() int { return a.windowSize }

// Analyze feeds one chunk of samples through the filter cascade and the
// window accumulator. channels must be 1 (mono, right ignored) or 2; for
// stereo, left and right must be the same length. Chunks may be any size:
// results are identical however the stream is split.
//
// Does not allocate; all buffer space is owned by the Analyzer.
func (a *Analyzer) Analyze(left, right []float64, channels int) error {
	if a.coeffs == nil {
		return ErrNotInitialized
	}
	if a.windowSamples >= a.windowSize {
		return fmt.Errorf("%w: %d samples in a %d sample window",
			ErrWindowOverflow, a.windowSamples, a.windowSize)
	}

	switch channels {
	case 1:
		right = left
	case 2:
		if len(left) != len(right) {
			return fmt.Errorf("%w: %d vs %d", ErrChannelMismatch, len(left), len(right))
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	n := len(left)
	if n == 0 {
		return nil
	}

	// Stage the head of this chunk behind the saved history so sub-batches
	// that start within the first order samples can read both halves from
	// one contiguous buffer.
	head := n
	if head > order {
		head = order
	}
	copy(a.left.inpre[order:], left[:head])
	copy(a.right.inpre[order:], right[:head])

	pos := 0
	for remaining := n; remaining > 0; {
		// No more than what is left of the current window.
		cur := a.windowSize - a.windowSamples
		if cur > remaining {
			cur = remaining
		}

		// While inside the first order samples, filter out of the staged
		// prefix buffer; past that the caller's slices carry their own
		// history.
		var lin, rin []float64
		var inOff int
		if pos < order {
			lin = a.left.inpre[:]
			rin = a.right.inpre[:]
			inOff = order + pos
			if cur > order-pos {
				cur = order - pos
			}
		} else {
			lin = left
			rin = right
			inOff = pos
		}

		dst := order + a.windowSamples
		filter.Yule(lin, inOff, a.left.step[:], dst, cur, a.coeffs)
		filter.Yule(rin, inOff, a.right.step[:], dst, cur, a.coeffs)
		filter.Butter(a.left.step[:], dst, a.left.out[:], dst, cur, a.coeffs)
		filter.Butter(a.right.step[:], dst, a.right.out[:], dst, cur, a.coeffs)

		lw := a.left.out[dst : dst+cur]
		rw := a.right.out[dst : dst+cur]
		a.sumLeft += f64.DotProductUnsafe(lw, lw)
		a.sumRight += f64.DotProductUnsafe(rw, rw)

		pos += cur
		remaining -= cur
		a.windowSamples += cur

		if a.windowSamples == a.windowSize {
			a.completeWindow()
		}
		if a.windowSamples > a.windowSize {
			return fmt.Errorf("%w: %d samples in a %d sample window",
				ErrWindowOverflow, a.windowSamples, a.windowSize)
		}
	}

	// Save the trailing order raw samples as history for the next call.
	if n < order {
		copy(a.left.inpre[:], a.left.inpre[n:order])
		copy(a.left.inpre[order-n:order], left)
		copy(a.right.inpre[:], a.right.inpre[n:order])
		copy(a.right.inpre[order-n:order], right)
	} else {
		copy(a.left.inpre[:order], left[n-order:])
		copy(a.right.inpre[:order], right[n-order:])
	}

	return nil
}

// completeWindow folds the finished RMS window into the title histogram and
// slides the filter output histories to the front for the next window.
func (a *Analyzer) completeWindow() {
	meanSquare := (a.sumLeft+a.sumRight)/float64(a.windowSamples)*0.5 + logGuard
	loudness := histogram.StepsPerDB * 10.0 * math.Log10(meanSquare)
	a.title.Add(histogram.Bucket(loudness))

	a.sumLeft = 0
	a.sumRight = 0

	w := a.windowSamples
	copy(a.left.step[:order], a.left.step[w:w+order])
	copy(a.right.step[:order], a.right.step[w:w+order])
	copy(a.left.out[:order], a.left.out[w:w+order])
	copy(a.right.out[:order], a.right.out[w:w+order])

	a.windowSamples = 0
}

// TitleGain returns the recommended dB adjustment for everything analyzed
// since the last TitleGain or Init call. The title histogram is merged into
// the album histogram and cleared, and all transient filter and window state
// is reset; the album histogram and sample rate configuration are untouched.
// ok is false when the title histogram is empty, i.e. no full analysis
// window has completed since the last query.
func (a *Analyzer) TitleGain() (gain float64, ok bool) {
	gain, ok = a.title.Gain()

	a.album.Merge(&a.title)
	a.title.Reset()
	a.resetStreamState()

	return gain, ok
}

// AlbumGain returns the recommended dB adjustment for everything analyzed
// since Init, across all title queries. It does not mutate any state and may
// be called any number of times. ok is false when nothing has been folded
// into the album histogram yet.
func (a *Analyzer) AlbumGain() (gain float64, ok bool) {
	return a.album.Gain()
}
