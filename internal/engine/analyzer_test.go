package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-replaygain/internal/filter"
	"github.com/tphakala/go-replaygain/internal/histogram"
	"github.com/tphakala/go-replaygain/internal/testutil"
)

// referenceGain computes the title gain of a complete signal without any
// streaming bookkeeping: filter the whole signal in one pass over fully
// padded buffers, then bin consecutive windows. Used to validate the
// engine's chunked windowing against a straight-line computation.
func referenceGain(t *testing.T, left, right []float64, sampleRate int) (float64, bool) {
	t.Helper()

	c, ok := filter.ForRate(sampleRate)
	require.True(t, ok, "coefficients for %d Hz", sampleRate)

	window := int(math.Ceil(float64(sampleRate) * 0.050))
	n := len(left)
	pad := filter.MaxOrder

	filterChannel := func(signal []float64) []float64 {
		in := make([]float64, pad+n)
		step := make([]float64, pad+n)
		out := make([]float64, pad+n)
		copy(in[pad:], signal)
		filter.Yule(in, pad, step, pad, n, c)
		filter.Butter(step, pad, out, pad, n, c)
		return out[pad:]
	}

	lout := filterChannel(left)
	rout := filterChannel(right)

	var hist histogram.Histogram
	for w := 0; w+window <= n; w += window {
		var lsum, rsum float64
		for i := w; i < w+window; i++ {
			lsum += lout[i] * lout[i]
			rsum += rout[i] * rout[i]
		}
		loudness := histogram.StepsPerDB * 10.0 * math.Log10((lsum+rsum)/float64(window)*0.5+1e-37)
		hist.Add(histogram.Bucket(loudness))
	}
	return hist.Gain()
}

func TestNew_RejectsUnsupportedRates(t *testing.T) {
	for _, rate := range []int{0, -44100, 44101, 44099, 7999, 96001, 192000} {
		_, err := New(rate)
		assert.ErrorIs(t, err, ErrUnsupportedRate, "rate %d", rate)
	}
}

func TestNew_AcceptsAllSupportedRates(t *testing.T) {
	for _, rate := range filter.SupportedRates() {
		a, err := New(rate)
		require.NoError(t, err, "rate %d", rate)
		assert.Equal(t, rate, a.SampleRate())

		wantWindow := int(math.Ceil(float64(rate) * 0.050))
		assert.Equal(t, wantWindow, a.WindowSize(), "rate %d", rate)
	}
}

func TestInit_FailureLeavesAnalyzerUnusable(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	err = a.Init(44101)
	require.ErrorIs(t, err, ErrUnsupportedRate)
	assert.Equal(t, 0, a.SampleRate())

	err = a.Analyze(testutil.Silence(100), nil, 1)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, ok := a.TitleGain()
	assert.False(t, ok)

	// A later valid Init recovers the analyzer.
	require.NoError(t, a.Init(48000))
	assert.NoError(t, a.Analyze(testutil.Silence(100), nil, 1))
}

func TestAnalyze_InvalidChannelCount(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	buf := testutil.Silence(64)
	for _, channels := range []int{0, 3, -1, 6} {
		err := a.Analyze(buf, buf, channels)
		assert.ErrorIs(t, err, ErrInvalidChannels, "channels=%d", channels)
	}

	// Rejected calls must not advance the window accumulator.
	assert.Zero(t, a.titleWindowCount())
}

func TestAnalyze_ChannelLengthMismatch(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	err = a.Analyze(testutil.Silence(100), testutil.Silence(99), 2)
	assert.ErrorIs(t, err, ErrChannelMismatch)
}

func TestAnalyze_EmptyChunkIsNoOp(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	require.NoError(t, a.Analyze(nil, nil, 1))
	require.NoError(t, a.Analyze([]float64{}, []float64{}, 2))

	_, ok := a.TitleGain()
	assert.False(t, ok, "no samples analyzed, want sentinel")
}

func TestTitleGain_SentinelWithoutData(t *testing.T) {
	a, err := New(48000)
	require.NoError(t, err)

	_, ok := a.TitleGain()
	assert.False(t, ok)

	_, ok = a.AlbumGain()
	assert.False(t, ok)
}

func TestTitleGain_SentinelOnPartialWindowOnly(t *testing.T) {
	a, err := New(48000)
	require.NoError(t, err)

	// One sample short of a full 50 ms window: nothing binned yet.
	require.NoError(t, a.Analyze(testutil.Silence(a.WindowSize()-1), nil, 1))

	_, ok := a.TitleGain()
	assert.False(t, ok)
}

func TestSilence_YieldsCalibrationGain(t *testing.T) {
	for _, rate := range []int{8000, 44100, 96000} {
		a, err := New(rate)
		require.NoError(t, err)

		// Three full windows of digital silence.
		require.NoError(t, a.Analyze(testutil.Silence(3*a.WindowSize()), nil, 1))
		assert.EqualValues(t, 3, a.titleWindowCount(), "rate %d", rate)

		gain, ok := a.TitleGain()
		require.True(t, ok, "rate %d", rate)

		// Silence lands in the lowest loudness bucket, so the recommendation
		// is the full calibration reference.
		assert.InDelta(t, 64.82, gain, 1e-9, "rate %d", rate)
	}
}

func TestRate88200_DegeneratesToCalibrationGain(t *testing.T) {
	// The published coefficient row for 88200 Hz is numerically unstable, so
	// the filter output overflows and every window collapses into the
	// quietest bucket. The recommendation is then the calibration reference
	// regardless of the input. The reference analyzer produces the same
	// value, so pin it rather than hide the rate.
	a, err := New(88200)
	require.NoError(t, err)

	// Two seconds of a loud tone that yields sane gains at every other rate.
	signal := testutil.Sine(2*88200, 1000, 88200, 0.6*testutil.FullScale)
	require.NoError(t, a.Analyze(signal, nil, 1))

	gain, ok := a.TitleGain()
	require.True(t, ok)
	assert.InDelta(t, 64.82, gain, 1e-9)
}

func TestWindowCount(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	// One second is exactly 20 windows of 2205 samples at 44.1 kHz.
	signal := testutil.Sine(44100, 1000, 44100, 0.5*testutil.FullScale)
	require.NoError(t, a.Analyze(signal, nil, 1))
	assert.EqualValues(t, 20, a.titleWindowCount())

	_, ok := a.TitleGain()
	require.True(t, ok)
	assert.EqualValues(t, 20, a.albumWindowCount())
	assert.Zero(t, a.titleWindowCount())
}

func TestChunkingTransparency(t *testing.T) {
	const rate = 44100
	signal := testutil.Sweep(3*rate, 50, 8000, rate, 0.4*testutil.FullScale)

	whole, err := New(rate)
	require.NoError(t, err)
	require.NoError(t, whole.Analyze(signal, nil, 1))
	want, ok := whole.TitleGain()
	require.True(t, ok)

	splits := map[string][]int{
		"single_samples":    {1},
		"below_order":       {3, 7},
		"exactly_order":     {10},
		"just_above_order":  {11},
		"window_aligned":    {2205},
		"window_misaligned": {2204},
		"large_chunks":      {16384},
		"mixed":             {1, 2, 3, 5, 8, 13, 512, 4800, 9},
	}

	for name, sizes := range splits {
		t.Run(name, func(t *testing.T) {
			a, err := New(rate)
			require.NoError(t, err)

			for _, chunk := range testutil.Chunks(signal, sizes...) {
				require.NoError(t, a.Analyze(chunk, nil, 1))
			}

			got, ok := a.TitleGain()
			require.True(t, ok)
			assert.InDelta(t, want, got, testutil.DBTolerance,
				"split %v disagrees with single-call analysis", sizes)
		})
	}
}

func TestMonoStereoEquivalence(t *testing.T) {
	const rate = 32000
	signal := testutil.Sine(2*rate, 440, rate, 0.3*testutil.FullScale)

	mono, err := New(rate)
	require.NoError(t, err)
	require.NoError(t, mono.Analyze(signal, nil, 1))
	monoGain, ok := mono.TitleGain()
	require.True(t, ok)

	stereo, err := New(rate)
	require.NoError(t, err)
	rightCopy := append([]float64(nil), signal...)
	require.NoError(t, stereo.Analyze(signal, rightCopy, 2))
	stereoGain, ok := stereo.TitleGain()
	require.True(t, ok)

	assert.InDelta(t, monoGain, stereoGain, testutil.ExactTolerance)
}

func TestReferenceConsistency(t *testing.T) {
	testCases := []struct {
		name string
		rate int
		freq float64
		amp  float64
	}{
		{"1kHz_full_scale_44100", 44100, 1000, testutil.FullScale},
		{"440Hz_half_scale_48000", 48000, 440, 0.5 * testutil.FullScale},
		{"100Hz_quiet_8000", 8000, 100, 0.01 * testutil.FullScale},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			signal := testutil.Sine(4*tc.rate, tc.freq, float64(tc.rate), tc.amp)
			want, refOK := referenceGain(t, signal, signal, tc.rate)
			require.True(t, refOK)

			a, err := New(tc.rate)
			require.NoError(t, err)
			for _, chunk := range testutil.Chunks(signal, 1000, 333, 4800) {
				require.NoError(t, a.Analyze(chunk, nil, 1))
			}
			got, ok := a.TitleGain()
			require.True(t, ok)

			assert.InDelta(t, want, got, testutil.DBTolerance)
			testutil.AssertGainInRange(t, got, 64.82-120, 64.82)
		})
	}
}

func TestTitleAlbumSeparation(t *testing.T) {
	const rate = 44100
	quiet := testutil.Sine(rate, 440, rate, 0.05*testutil.FullScale)
	loud := testutil.Sine(rate, 440, rate, 0.5*testutil.FullScale)

	a, err := New(rate)
	require.NoError(t, err)

	require.NoError(t, a.Analyze(quiet, nil, 1))
	quietGain, ok := a.TitleGain()
	require.True(t, ok)

	require.NoError(t, a.Analyze(loud, nil, 1))
	loudGain, ok := a.TitleGain()
	require.True(t, ok)

	// The second title reflects only the loud material: a fresh analyzer fed
	// the same signal must agree exactly, since TitleGain fully resets the
	// transient state.
	fresh, err := New(rate)
	require.NoError(t, err)
	require.NoError(t, fresh.Analyze(loud, nil, 1))
	freshGain, ok := fresh.TitleGain()
	require.True(t, ok)
	assert.InDelta(t, freshGain, loudGain, testutil.ExactTolerance)

	// 20 dB amplitude ratio between the two titles.
	assert.InDelta(t, 20.0, quietGain-loudGain, 0.1)

	// The album spans both titles; its loudest 5% of windows come from the
	// loud material, so the album recommendation tracks the loud title.
	albumGain, ok := a.AlbumGain()
	require.True(t, ok)
	assert.InDelta(t, loudGain, albumGain, 0.05)
}

func TestAlbumGain_NonDestructive(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	signal := testutil.Sine(44100, 880, 44100, 0.2*testutil.FullScale)
	require.NoError(t, a.Analyze(signal, nil, 1))

	// Album statistics only accumulate when a title completes.
	_, ok := a.AlbumGain()
	assert.False(t, ok, "album must be empty before the first title query")

	_, ok = a.TitleGain()
	require.True(t, ok)

	first, ok := a.AlbumGain()
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := a.AlbumGain()
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestInit_ClearsAlbum(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	signal := testutil.Sine(44100, 440, 44100, 0.2*testutil.FullScale)
	require.NoError(t, a.Analyze(signal, nil, 1))
	_, ok := a.TitleGain()
	require.True(t, ok)
	_, ok = a.AlbumGain()
	require.True(t, ok)

	require.NoError(t, a.Init(48000))

	_, ok = a.AlbumGain()
	assert.False(t, ok, "re-initialization must clear album statistics")
	_, ok = a.TitleGain()
	assert.False(t, ok)
}

func TestAnalyze_WindowOverflowInvariant(t *testing.T) {
	a, err := New(44100)
	require.NoError(t, err)

	a.forceWindowSamples(a.WindowSize())

	err = a.Analyze(testutil.Silence(16), nil, 1)
	assert.ErrorIs(t, err, ErrWindowOverflow)
}

func TestAnalyze_StatePersistsAcrossShortChunks(t *testing.T) {
	// Chunks shorter than the filter order exercise the rotating history
	// prefix; a long run of them must produce the same result as one call.
	const rate = 22050
	signal := testutil.Sine(rate/2, 1000, rate, 0.25*testutil.FullScale)

	whole, err := New(rate)
	require.NoError(t, err)
	require.NoError(t, whole.Analyze(signal, nil, 1))
	want, ok := whole.TitleGain()
	require.True(t, ok)

	a, err := New(rate)
	require.NoError(t, err)
	for _, chunk := range testutil.Chunks(signal, 4) {
		require.NoError(t, a.Analyze(chunk, nil, 1))
	}
	got, ok := a.TitleGain()
	require.True(t, ok)

	assert.InDelta(t, want, got, testutil.DBTolerance)
}

func TestAnalyze_StereoDistinctChannels(t *testing.T) {
	const rate = 44100
	left := testutil.Sine(2*rate, 440, rate, 0.4*testutil.FullScale)
	right := testutil.Sine(2*rate, 1200, rate, 0.1*testutil.FullScale)

	want, refOK := referenceGain(t, left, right, rate)
	require.True(t, refOK)

	a, err := New(rate)
	require.NoError(t, err)
	for i, lc := range testutil.Chunks(left, 1500) {
		rc := testutil.Chunks(right, 1500)[i]
		require.NoError(t, a.Analyze(lc, rc, 2))
	}
	got, ok := a.TitleGain()
	require.True(t, ok)

	assert.InDelta(t, want, got, testutil.DBTolerance)
}
