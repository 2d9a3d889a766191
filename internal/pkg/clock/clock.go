package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the time source for attendance and leave decisions. Now is reported in
// the business location so that wall-clock rules (lateness, "today") read naturally.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type zoned struct {
	base clockwork.Clock
	loc  *time.Location
}

// New wraps a clockwork clock. Tests pass clockwork.NewFakeClockAt to pin time.
func New(base clockwork.Clock, loc *time.Location) Clock {
	if base == nil {
		base = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &zoned{base: base, loc: loc}
}

// NewReal returns a clock backed by the system time.
func NewReal(loc *time.Location) Clock {
	return New(clockwork.NewRealClock(), loc)
}

func (z *zoned) Now() time.Time { return z.base.Now().In(z.loc) }
func (z *zoned) Location() *time.Location { return z.loc }
