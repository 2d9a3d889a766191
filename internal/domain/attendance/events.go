package attendance

import "time"

const AggregateType = "attendance"

const (
	EventCheckedIn  = "attendance.checked_in"
	EventCheckedOut = "attendance.checked_out"
)

// Event is the payload published for attendance state changes.
type Event struct {
	AttendanceID string     `json:"attendance_id"`
	EmployeeID   string     `json:"employee_id"`
	Date         string     `json:"date"`
	Status       Status     `json:"status"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	CheckOut     *time.Time `json:"check_out,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

func NewEvent(a Attendance, occurredAt time.Time) Event {
	return Event{
		AttendanceID: a.ID,
		EmployeeID:   a.EmployeeID,
		Date:         a.Date.String(),
		Status:       a.Status,
		CheckIn:      a.CheckIn,
		CheckOut:     a.CheckOut,
		OccurredAt:   occurredAt.UTC(),
	}
}
