package attendance

import "context"

// AttendanceService is the per-day check-in/check-out state machine.
type AttendanceService interface {
	// CheckIn opens today's record for the employee.
	CheckIn(ctx context.Context, employeeID string) (Attendance, error)

	// CheckOut closes today's record for the employee.
	CheckOut(ctx context.Context, employeeID string) (Attendance, error)

	// Today reports today's record and which actions are currently allowed.
	Today(ctx context.Context, employeeID string) (TodayStatus, error)

	// History lists the employee's own records.
	History(ctx context.Context, employeeID string, filter HistoryFilter) ([]Attendance, error)
}
