// Package histogram provides the fixed-size loudness histogram used to turn
// per-window RMS statistics into a ReplayGain recommendation. Window loudness
// values are quantized to 0.01 dB buckets over a 120 dB range; the gain is
// derived from the 95th percentile bucket relative to the pink noise
// calibration reference.
package histogram

import "math"

const (
	// StepsPerDB is the number of histogram buckets per decibel.
	StepsPerDB = 100

	// MaxDB is the loudness range covered by the histogram in decibels.
	MaxDB = 120

	// NumBuckets is the total bucket count (120 dB at 0.01 dB resolution).
	NumBuckets = StepsPerDB * MaxDB

	// rmsPercentile selects the loudness level that 95% of analysis windows
	// fall at or below.
	rmsPercentile = 0.95

	// pinkRef is the ReplayGain calibration reference in dB: the loudness of
	// pink noise at the standard listening level, against which the
	// percentile bucket is offset.
	pinkRef = 64.82
)

// Histogram counts analysis windows per quantized loudness bucket.
// The zero value is empty and ready to use.
type Histogram struct {
	counts [NumBuckets]uint32
}

// Bucket converts a window loudness value (in centi-dB, i.e. already scaled
// by StepsPerDB) to a bucket index, clamping into [0, NumBuckets).
func Bucket(loudness float64) int {
	i := int(loudness)
	if i < 0 {
		i = 0
	}
	if i >= NumBuckets {
		i = NumBuckets - 1
	}
	return i
}

// Add records one analysis window in the given bucket.
func (h *Histogram) Add(bucket int) {
	h.counts[bucket]++
}

// Merge adds all counts from other into h. Counts in other are unchanged.
func (h *Histogram) Merge(other *Histogram) {
	for i := range h.counts {
		h.counts[i] += other.counts[i]
	}
}

// Reset clears all bucket counts.
func (h *Histogram) Reset() {
	h.counts = [NumBuckets]uint32{}
}

// Total returns the number of analysis windows recorded.
func (h *Histogram) Total() uint64 {
	var total uint64
	for _, c := range h.counts {
		total += uint64(c)
	}
	return total
}

// Gain computes the recommended dB adjustment from the recorded windows.
//
// It walks buckets from the loudest down until the top 5% of windows have
// been passed, then returns the calibration reference minus the loudness of
// the bucket where the percentile threshold was crossed. The second return
// value is false when the histogram is empty and no recommendation can be
// made.
func (h *Histogram) Gain() (float64, bool) {
	total := h.Total()
	if total == 0 {
		return 0, false
	}

	upper := int64(math.Ceil(float64(total) * (1.0 - rmsPercentile)))
	i := NumBuckets - 1
	// Bucket 0 never needs its count subtracted: once the scan reaches it,
	// the remaining threshold can only be satisfied there, so stopping at
	// i == 0 yields the same index either way.
	for ; i > 0; i-- {
		upper -= int64(h.counts[i])
		if upper <= 0 {
			break
		}
	}

	return pinkRef - float64(i)/StepsPerDB, true
}
