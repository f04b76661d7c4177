package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// Recency classification compares OSM dates against "now", so tests need a
// fixed reference point for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for classification. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
