// Command replaygain-wav computes ReplayGain values for WAV audio files.
//
// Usage:
//
//	replaygain-wav track.wav
//	replaygain-wav track1.wav track2.wav track3.wav   # album mode
//	replaygain-wav -chunk 65536 -v album/*.wav
//
// Each file is analyzed as one title. When more than one file is given, all
// files are folded into a shared album recommendation, printed last. Files
// in one run must share a sample rate, since album statistics are only
// meaningful over a single analyzer configuration.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tphakala/go-replaygain"
)

const (
	// Frames decoded per read. Larger chunks reduce decoder overhead.
	defaultChunkFrames = 8192

	minRequiredArgs = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	chunkFrames := flag.Int("chunk", defaultChunkFrames, "Frames decoded per chunk")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	files := flag.Args()
	if len(files) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] track.wav [track2.wav ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s track.wav                 # Title gain for one track\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s 01.wav 02.wav 03.wav      # Title gains plus album gain\n", os.Args[0])
		return fmt.Errorf("no input files")
	}

	var analyzer *replaygain.Analyzer

	for _, path := range files {
		input, err := openWAVInput(path, *verbose)
		if err != nil {
			return err
		}

		if analyzer == nil {
			analyzer, err = replaygain.New(input.rate)
			if err != nil {
				_ = input.Close()
				return fmt.Errorf("%s: %w", path, err)
			}
		} else if input.rate != analyzer.SampleRate() {
			_ = input.Close()
			return fmt.Errorf("%s: sample rate %d Hz differs from album rate %d Hz",
				path, input.rate, analyzer.SampleRate())
		}

		err = feedWAV(analyzer, input, *chunkFrames)
		_ = input.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		gain, ok := analyzer.TitleGain()
		if !ok {
			fmt.Printf("%s: not enough audio for a recommendation\n", path)
			continue
		}
		fmt.Printf("%s: %+6.2f dB\n", path, gain)
	}

	if len(files) > 1 {
		if gain, ok := analyzer.AlbumGain(); ok {
			fmt.Printf("album: %+6.2f dB\n", gain)
		}
	}

	return nil
}
