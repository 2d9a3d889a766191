package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/config"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
)

type CooldownScope string

const (
	// CooldownPerEmployee compares against the employee's most recent action on any day.
	CooldownPerEmployee CooldownScope = "employee"
	// CooldownPerDay compares only against today's record.
	CooldownPerDay CooldownScope = "day"
)

// Policy holds the tunable attendance rules.
type Policy struct {
	LateAfterHour    int
	LateAfterMinute  int
	CheckInCooldown  time.Duration
	CheckOutCooldown time.Duration
	MinimumDuration  time.Duration
	CooldownScope    CooldownScope
}

func DefaultPolicy() Policy {
	return Policy{
		LateAfterHour:    9,
		LateAfterMinute:  30,
		CheckInCooldown:  time.Minute,
		CheckOutCooldown: time.Minute,
		MinimumDuration:  time.Minute,
		CooldownScope:    CooldownPerEmployee,
	}
}

func NewPolicy(cfg config.AttendanceConfig) (Policy, error) {
	lateAfter, err := time.Parse("15:04", cfg.LateAfter)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid late-after time %q: %w", cfg.LateAfter, err)
	}

	scope := CooldownScope(cfg.CooldownScope)
	if scope != CooldownPerEmployee && scope != CooldownPerDay {
		return Policy{}, fmt.Errorf("invalid cooldown scope %q", cfg.CooldownScope)
	}

	return Policy{
		LateAfterHour:    lateAfter.Hour(),
		LateAfterMinute:  lateAfter.Minute(),
		CheckInCooldown:  cfg.CheckInCooldown,
		CheckOutCooldown: cfg.CheckOutCooldown,
		MinimumDuration:  cfg.MinimumDuration,
		CooldownScope:    scope,
	}, nil
}

// StatusAt derives the check-in status from the wall-clock time of t. Lateness is judged at
// minute resolution: 09:30:59 is still on time with the default threshold.
func (p Policy) StatusAt(t time.Time) attendance.Status {
	h, m := t.Hour(), t.Minute()
	if h > p.LateAfterHour || (h == p.LateAfterHour && m > p.LateAfterMinute) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

// withinCooldown reports whether last happened less than window before now.
func withinCooldown(last *time.Time, now time.Time, window time.Duration) bool {
	if last == nil || window <= 0 {
		return false
	}
	return !last.Before(now.Add(-window))
}
