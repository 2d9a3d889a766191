package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
)

type AttendanceResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	Date          string  `json:"date"`
	CheckIn       *string `json:"check_in"`
	CheckOut      *string `json:"check_out"`
	Status        string  `json:"status"`
	State         string  `json:"state"`
	WorkedMinutes *int    `json:"worked_minutes,omitempty"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.String(),
		Status:     string(a.Status),
		State:      string(a.State()),
	}
	if a.CheckIn != nil {
		v := a.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &v
	}
	if a.CheckOut != nil {
		v := a.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &v
		minutes := int(a.WorkDuration().Minutes())
		resp.WorkedMinutes = &minutes
	}
	return resp
}

type ListAttendanceResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	Total       int                  `json:"total"`
}

// TodayStatus is the caller's view of the current day.
type TodayStatus struct {
	Date        calendar.Date
	Attendance  *Attendance
	CanCheckIn  bool
	CanCheckOut bool
}

func (t TodayStatus) State() State {
	if t.Attendance == nil {
		return StateNotStarted
	}
	return t.Attendance.State()
}

type TodayResponse struct {
	Date        string              `json:"date"`
	State       string              `json:"state"`
	CanCheckIn  bool                `json:"can_check_in"`
	CanCheckOut bool                `json:"can_check_out"`
	Attendance  *AttendanceResponse `json:"attendance"`
}

func NewTodayResponse(t TodayStatus) TodayResponse {
	resp := TodayResponse{
		Date:        t.Date.String(),
		State:       string(t.State()),
		CanCheckIn:  t.CanCheckIn,
		CanCheckOut: t.CanCheckOut,
	}
	if t.Attendance != nil {
		a := NewAttendanceResponse(*t.Attendance)
		resp.Attendance = &a
	}
	return resp
}

// HistoryFilter narrows History to one month. Month without Year is rejected.
type HistoryFilter struct {
	Month *int
	Year  *int
}

func (f HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs.Add("year", "year is out of range")
	}
	if f.Month != nil && f.Year == nil {
		errs.Add("year", "year is required when month is given")
	}

	return errs.Err()
}

// Range converts the filter to inclusive date bounds. Both nil means no restriction.
func (f HistoryFilter) Range() (*calendar.Date, *calendar.Date) {
	if f.Year == nil {
		return nil, nil
	}
	if f.Month != nil {
		from, to := calendar.MonthRange(*f.Year, time.Month(*f.Month))
		return &from, &to
	}
	from := calendar.New(*f.Year, time.January, 1)
	to := calendar.New(*f.Year, time.December, 31)
	return &from, &to
}
