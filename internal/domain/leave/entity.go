package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
)

type LeaveType string

const (
	LeaveTypeVacation LeaveType = "VACATION"
	LeaveTypeSick     LeaveType = "SICK"
	LeaveTypePersonal LeaveType = "PERSONAL"
	LeaveTypeUnpaid   LeaveType = "UNPAID"
)

// Category is a ledger bucket. Only some leave types draw from one.
type Category string

const (
	CategoryVacation Category = "VACATION"
	CategorySick     Category = "SICK"
	CategoryPersonal Category = "PERSONAL"
)

var Categories = []Category{CategoryVacation, CategorySick, CategoryPersonal}

// UNPAID has no entry: unpaid leave is never charged to the ledger.
var leaveTypeCategory = map[LeaveType]Category{
	LeaveTypeVacation: CategoryVacation,
	LeaveTypeSick:     CategorySick,
	LeaveTypePersonal: CategoryPersonal,
}

func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeVacation, LeaveTypeSick, LeaveTypePersonal, LeaveTypeUnpaid:
		return true
	}
	return false
}

// Category reports the ledger bucket charged when a request of this type is approved.
func (t LeaveType) Category() (Category, bool) {
	c, ok := leaveTypeCategory[t]
	return c, ok
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryVacation, CategorySick, CategoryPersonal:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// Allowance is the number of days granted per category when a balance row is first created.
type Allowance struct {
	VacationDays int
	SickDays     int
	PersonalDays int
}

func DefaultAllowance() Allowance {
	return Allowance{VacationDays: 20, SickDays: 10, PersonalDays: 5}
}

// LeaveBalance is one employee's ledger for one calendar year.
// Available days are always derived from total and used.
type LeaveBalance struct {
	ID                string
	EmployeeID        string
	Year              int
	VacationDaysTotal int
	VacationDaysUsed  int
	SickDaysTotal     int
	SickDaysUsed      int
	PersonalDaysTotal int
	PersonalDaysUsed  int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewLeaveBalance builds an unsaved balance granting a.
func NewLeaveBalance(employeeID string, year int, a Allowance) LeaveBalance {
	return LeaveBalance{
		EmployeeID:        employeeID,
		Year:              year,
		VacationDaysTotal: a.VacationDays,
		SickDaysTotal:     a.SickDays,
		PersonalDaysTotal: a.PersonalDays,
	}
}

func (b LeaveBalance) Total(c Category) int {
	switch c {
	case CategoryVacation:
		return b.VacationDaysTotal
	case CategorySick:
		return b.SickDaysTotal
	case CategoryPersonal:
		return b.PersonalDaysTotal
	}
	return 0
}

func (b LeaveBalance) Used(c Category) int {
	switch c {
	case CategoryVacation:
		return b.VacationDaysUsed
	case CategorySick:
		return b.SickDaysUsed
	case CategoryPersonal:
		return b.PersonalDaysUsed
	}
	return 0
}

// Available may be negative when usage was allowed past the allowance.
func (b LeaveBalance) Available(c Category) int {
	return b.Total(c) - b.Used(c)
}

type LeaveRequest struct {
	ID              string
	EmployeeID      string
	LeaveType       LeaveType
	StartDate       calendar.Date
	EndDate         calendar.Date
	Reason          string
	Attachment      *string
	Status          Status
	ApproverID      *string
	DecidedAt       *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Days is the inclusive span of the request. It is recomputed from the dates and never stored.
func (r LeaveRequest) Days() int {
	return calendar.InclusiveDays(r.StartDate, r.EndDate)
}

// Transition describes the single PENDING -> terminal status change of a request.
type Transition struct {
	To              Status
	ApproverID      string
	DecidedAt       time.Time
	RejectionReason *string
}
