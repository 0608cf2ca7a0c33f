package replaygain

// Common sample rates for convenience.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050
)

// NewCD creates an analyzer for CD audio (44.1 kHz).
func NewCD() (*Analyzer, error) {
	return New(RateCD)
}

// NewDAT creates an analyzer for DAT/DVD audio (48 kHz).
func NewDAT() (*Analyzer, error) {
	return New(RateDAT)
}

// TitleGainMono computes the title gain of a complete mono signal in one
// shot. Convenience for callers that already hold the whole signal in
// memory; streaming callers should use an Analyzer directly.
func TitleGainMono(samples []float64, sampleRate int) (float64, bool, error) {
	a, err := New(sampleRate)
	if err != nil {
		return 0, false, err
	}
	if err := a.AnalyzeMono(samples); err != nil {
		return 0, false, err
	}
	gain, ok := a.TitleGain()
	return gain, ok, nil
}

// TitleGainStereo computes the title gain of a complete stereo signal in one
// shot.
func TitleGainStereo(left, right []float64, sampleRate int) (float64, bool, error) {
	a, err := New(sampleRate)
	if err != nil {
		return 0, false, err
	}
	if err := a.AnalyzeStereo(left, right); err != nil {
		return 0, false, err
	}
	gain, ok := a.TitleGain()
	return gain, ok, nil
}
