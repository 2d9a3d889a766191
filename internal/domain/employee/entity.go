package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
)

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusTerminated Status = "TERMINATED"
)

const DefaultPosition = "Employee"

// Employee is the HR identity attached to an authenticated user.
// EmployeeCode is a display code assigned by the store; it is never derived from a row count.
type Employee struct {
	ID           string
	UserID       string
	EmployeeCode string
	Position     string
	HireDate     calendar.Date
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
