// Package replaygain computes ReplayGain loudness normalization values for
// streams of PCM audio in pure Go.
//
// The analyzer ingests audio in arbitrarily sized chunks (mono or stereo),
// carries filter and window state across calls, and on demand produces a
// recommended dB gain adjustment for the material analyzed so far. Feeding a
// stream in one call or in many produces identical results, so whole files
// never need to be decoded into memory at once.
//
// # Features
//
//   - Streaming analysis with proper filter state management across chunks
//   - Equal-loudness weighting via the published ReplayGain filter cascade
//     (order-10 inverse equal-loudness IIR + order-2 Butterworth high-pass)
//   - Title gain and album gain from a single pass over the audio
//   - Twelve supported sample rates from 8 kHz to 96 kHz (see the 88.2 kHz
//     caveat below)
//   - Zero allocation in the analysis hot path
//   - SIMD-accelerated window accumulation via github.com/tphakala/simd
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
//	analyzer, err := replaygain.New(replaygain.RateCD)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Feed audio chunks (full-scale PCM convention, e.g. ±32768 for 16-bit)
//	for chunk := range audioChunks {
//	    if err := analyzer.AnalyzeStereo(chunk.Left, chunk.Right); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	if gain, ok := analyzer.TitleGain(); ok {
//	    fmt.Printf("recommended adjustment: %+.2f dB\n", gain)
//	}
//
// # Album Workflow
//
// [Analyzer.TitleGain] returns the recommendation for everything analyzed
// since the previous title query and folds it into the album statistics.
// Processing an album is therefore one analyzer across all tracks:
//
//	analyzer, _ := replaygain.New(44100)
//	for _, track := range tracks {
//	    feedTrack(analyzer, track)
//	    gain, _ := analyzer.TitleGain()
//	    fmt.Printf("%s: %+6.2f dB\n", track.Name, gain)
//	}
//	albumGain, _ := analyzer.AlbumGain()
//	fmt.Printf("album: %+6.2f dB\n", albumGain)
//
// # Sample Scale
//
// The filter coefficients and the 64.82 dB pink noise calibration reference
// assume full-scale PCM amplitude, i.e. ±32768 for 16-bit audio. Callers
// holding normalized floats in [-1, 1] must scale by 32768 before feeding
// the analyzer, or the computed gain will be miscalibrated. The
// [Analyzer.AnalyzeInt16] and [Analyzer.AnalyzeInterleavedInt16] helpers
// feed 16-bit PCM at the correct scale directly.
//
// # Known Limitation at 88.2 kHz
//
// The published equal-loudness coefficient row for 88200 Hz is numerically
// unstable (its trailing coefficients repeat the 64000 Hz values), and every
// reference-conformant analyzer shares the defect: the filter output
// overflows, all analysis windows land in the quietest histogram bucket, and
// both [Analyzer.TitleGain] and [Analyzer.AlbumGain] report a constant
// +64.82 dB regardless of the audio. The rate is kept supported for
// compatibility with the reference tables. Callers who need a meaningful
// recommendation for 88.2 kHz material should resample it to 44.1 or 96 kHz
// first.
//
// # Thread Safety
//
// Each [Analyzer] is an independent unit of state: analyzing multiple
// streams concurrently needs one analyzer per stream and no synchronization
// between them. Calls on a single analyzer must be serialized.
//
// # Attribution
//
// The analysis algorithm, filter coefficients and calibration constants are
// those of the ReplayGain proposal by David Robinson
// (https://www.replaygain.org/), following the reference analyzer by Glen
// Sawyer with the 64/88.2/96 kHz coefficient extensions.
package replaygain
