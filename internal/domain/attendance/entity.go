package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
	StatusHalfDay Status = "HALF_DAY"
)

// State is the position of one (employee, date) pair in the check-in/check-out lifecycle.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateCheckedIn  State = "CHECKED_IN"
	StateCheckedOut State = "CHECKED_OUT"
)

type Attendance struct {
	ID         string
	EmployeeID string
	Date       calendar.Date
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a Attendance) State() State {
	switch {
	case a.CheckIn == nil:
		return StateNotStarted
	case a.CheckOut == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// WorkDuration is zero until the record is checked out.
func (a Attendance) WorkDuration() time.Duration {
	if a.CheckIn == nil || a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(*a.CheckIn)
}
