package replaygain

import (
	"github.com/tphakala/go-replaygain/internal/engine"
	"github.com/tphakala/go-replaygain/internal/filter"
)

// Common errors returned by the analyzer.
var (
	// ErrUnsupportedSampleRate indicates a sample rate outside the fixed
	// coefficient table. See SupportedRates for the valid set.
	ErrUnsupportedSampleRate = engine.ErrUnsupportedRate

	// ErrInvalidChannelCount indicates a channel count other than 1 or 2.
	ErrInvalidChannelCount = engine.ErrInvalidChannels

	// ErrChannelMismatch indicates stereo input with unequal channel lengths.
	ErrChannelMismatch = engine.ErrChannelMismatch

	// ErrNotInitialized indicates analysis on an analyzer whose last Reset
	// failed; it stays unusable until a Reset with a supported rate.
	ErrNotInitialized = engine.ErrNotInitialized

	// ErrWindowOverflow indicates corrupted window accumulation state.
	// It signals an internal defect, not a caller error.
	ErrWindowOverflow = engine.ErrWindowOverflow
)

// Analyzer computes ReplayGain for one audio stream. Create one per stream
// with New; an Analyzer must not be used from multiple goroutines without
// external synchronization.
type Analyzer struct {
	engine *engine.Analyzer

	// Conversion scratch for the int16 input paths, grown on demand so
	// steady-state chunk feeding does not allocate.
	scratchL []float64
	scratchR []float64
}

// New creates an analyzer for the given sample rate in Hz. Returns
// ErrUnsupportedSampleRate for rates outside the supported set.
func New(sampleRate int) (*Analyzer, error) {
	e, err := engine.New(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Analyzer{engine: e}, nil
}

// Reset re-initializes the analyzer for a new stream, possibly at a
// different sample rate. All state is discarded, including the album
// statistics. On an unsupported rate the analyzer becomes unusable until a
// successful Reset.
func (a *Analyzer) Reset(sampleRate int) error {
	return a.engine.Init(sampleRate)
}

// SampleRate returns the configured sample rate in Hz, or 0 when the last
// Reset failed.
func (a *Analyzer) SampleRate() int {
	return a.engine.SampleRate()
}

// WindowSize returns the RMS analysis window length in samples
// (50 ms of audio at the configured rate).
func (a *Analyzer) WindowSize() int {
	return a.engine.WindowSize()
}

// Analyze feeds a chunk of samples. channels must be 1 or 2; for mono the
// right slice is ignored and may be nil. Samples follow the full-scale PCM
// convention (±32768 for 16-bit material).
func (a *Analyzer) Analyze(left, right []float64, channels int) error {
	return a.engine.Analyze(left, right, channels)
}

// AnalyzeMono feeds a chunk of mono samples.
func (a *Analyzer) AnalyzeMono(samples []float64) error {
	return a.engine.Analyze(samples, nil, 1)
}

// AnalyzeStereo feeds a chunk of stereo samples as separate channels.
func (a *Analyzer) AnalyzeStereo(left, right []float64) error {
	return a.engine.Analyze(left, right, 2)
}

// AnalyzeInt16 feeds 16-bit PCM as separate channels. For mono pass the
// samples as left with a nil right.
func (a *Analyzer) AnalyzeInt16(left, right []int16) error {
	a.growScratch(len(left))
	for i, v := range left {
		a.scratchL[i] = float64(v)
	}
	if right == nil {
		return a.engine.Analyze(a.scratchL[:len(left)], nil, 1)
	}
	if len(right) != len(left) {
		return ErrChannelMismatch
	}
	for i, v := range right {
		a.scratchR[i] = float64(v)
	}
	return a.engine.Analyze(a.scratchL[:len(left)], a.scratchR[:len(right)], 2)
}

// AnalyzeInterleavedInt16 feeds 16-bit PCM in interleaved frame order, the
// layout produced by most decoders. channels must be 1 or 2 and len(samples)
// a multiple of channels.
func (a *Analyzer) AnalyzeInterleavedInt16(samples []int16, channels int) error {
	switch channels {
	case 1:
		return a.AnalyzeInt16(samples, nil)
	case 2:
		if len(samples)%2 != 0 {
			return ErrChannelMismatch
		}
		frames := len(samples) / 2
		a.growScratch(frames)
		for i := 0; i < frames; i++ {
			a.scratchL[i] = float64(samples[2*i])
			a.scratchR[i] = float64(samples[2*i+1])
		}
		return a.engine.Analyze(a.scratchL[:frames], a.scratchR[:frames], 2)
	default:
		return ErrInvalidChannelCount
	}
}

// TitleGain returns the recommended dB adjustment for the material analyzed
// since the previous TitleGain or Reset call, and starts a new title: the
// title statistics are folded into the album statistics and cleared along
// with all transient filter state. ok is false when not enough audio has
// been analyzed to make a recommendation.
func (a *Analyzer) TitleGain() (gain float64, ok bool) {
	return a.engine.TitleGain()
}

// AlbumGain returns the recommended dB adjustment for all material analyzed
// since Reset, across every completed title. It never mutates state and may
// be called at any time. ok is false before the first TitleGain query has
// folded a title into the album statistics.
func (a *Analyzer) AlbumGain() (gain float64, ok bool) {
	return a.engine.AlbumGain()
}

func (a *Analyzer) growScratch(n int) {
	if cap(a.scratchL) < n {
		a.scratchL = make([]float64, n)
		a.scratchR = make([]float64, n)
	}
	a.scratchL = a.scratchL[:cap(a.scratchL)]
	a.scratchR = a.scratchR[:cap(a.scratchR)]
}

// SupportedRates returns the supported sample rates in ascending order.
func SupportedRates() []int {
	return filter.SupportedRates()
}

// IsSupportedRate reports whether the analyzer accepts the given rate.
func IsSupportedRate(sampleRate int) bool {
	_, ok := filter.ForRate(sampleRate)
	return ok
}
