package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil, nil when the employee has no record for date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date calendar.Date) (*Attendance, error)

	// LatestCheckIn returns the most recent check-in instant across all of the employee's records.
	LatestCheckIn(ctx context.Context, employeeID string) (*time.Time, error)

	// LatestCheckOut returns the most recent check-out instant across all of the employee's records.
	LatestCheckOut(ctx context.Context, employeeID string) (*time.Time, error)

	// CreateCheckIn inserts the record unless one already exists for (employee, date).
	// created is false when another writer got there first; the stored record is returned either way.
	CreateCheckIn(ctx context.Context, a Attendance) (stored Attendance, created bool, err error)

	// CompleteCheckOut sets check_out on a record that has none.
	// Returns ErrAlreadyCheckedOut when the record was already closed.
	CompleteCheckOut(ctx context.Context, id string, at time.Time) (Attendance, error)

	// ListByEmployee returns records with from <= date <= to, newest first. Nil bounds are open.
	ListByEmployee(ctx context.Context, employeeID string, from, to *calendar.Date) ([]Attendance, error)
}
