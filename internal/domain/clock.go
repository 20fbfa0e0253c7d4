package domain

import "github.com/jonboulle/clockwork"

// clock stamps Dataset.LoadedAt and Summary.GeneratedAt.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for dataset and summary timestamps.
// Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
