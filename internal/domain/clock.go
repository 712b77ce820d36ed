package domain

import "github.com/jonboulle/clockwork"

// clock stamps observations. Tests swap in a fake via SetClock for
// deterministic report output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for observation timestamps. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
