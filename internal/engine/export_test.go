package engine

// Test-only accessors for internal state.

// forceWindowSamples corrupts the window accumulator so tests can exercise
// the overflow invariant check.
func (a *Analyzer) forceWindowSamples(n int) {
	a.windowSamples = n
}

// titleWindowCount returns the number of windows recorded since the last
// title query.
func (a *Analyzer) titleWindowCount() uint64 {
	return a.title.Total()
}

// albumWindowCount returns the number of windows folded into the album
// histogram.
func (a *Analyzer) albumWindowCount() uint64 {
	return a.album.Total()
}
