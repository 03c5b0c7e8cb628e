package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Today returns the clock's current calendar day. Production code passes
// clockwork.NewRealClock(); tests pass a fake clock for deterministic output.
func Today(c clockwork.Clock) time.Time {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return CalendarDay(c.Now())
}
