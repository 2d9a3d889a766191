package leave

import (
	"testing"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveType_Category(t *testing.T) {
	tests := []struct {
		leaveType LeaveType
		want      Category
		ok        bool
	}{
		{LeaveTypeVacation, CategoryVacation, true},
		{LeaveTypeSick, CategorySick, true},
		{LeaveTypePersonal, CategoryPersonal, true},
		{LeaveTypeUnpaid, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.leaveType), func(t *testing.T) {
			got, ok := tt.leaveType.Category()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeaveBalance_Available(t *testing.T) {
	b := NewLeaveBalance("emp-1", 2024, DefaultAllowance())
	b.VacationDaysUsed = 3
	b.PersonalDaysUsed = 7

	assert.Equal(t, 17, b.Available(CategoryVacation))
	assert.Equal(t, 10, b.Available(CategorySick))
	assert.Equal(t, -2, b.Available(CategoryPersonal))
	assert.Equal(t, 0, b.Available(Category("BOGUS")))
}

func TestLeaveRequest_Days(t *testing.T) {
	r := LeaveRequest{StartDate: calendar.New(2024, 1, 1), EndDate: calendar.New(2024, 1, 3)}
	assert.Equal(t, 3, r.Days())

	r.EndDate = r.StartDate
	assert.Equal(t, 1, r.Days())
}

func TestDecision_Validate(t *testing.T) {
	assert.NoError(t, Approve().Validate())
	assert.NoError(t, Reject("team offsite").Validate())
	assert.ErrorIs(t, Reject("   ").Validate(), ErrMissingRejectionReason)
	assert.ErrorIs(t, Decision{}.Validate(), ErrInvalidDecision)

	assert.True(t, Approve().IsApproval())
	assert.Equal(t, "team offsite", Reject(" team offsite ").Reason())
}

func TestDecideLeaveRequest_ToDecision(t *testing.T) {
	reason := "short staffed"

	d, err := DecideLeaveRequest{Status: "approved"}.ToDecision()
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, d.Status())

	d, err = DecideLeaveRequest{Status: "REJECTED", RejectionReason: &reason}.ToDecision()
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, d.Status())
	assert.Equal(t, reason, d.Reason())

	d, err = DecideLeaveRequest{Status: "REJECTED"}.ToDecision()
	require.NoError(t, err)
	assert.ErrorIs(t, d.Validate(), ErrMissingRejectionReason)

	_, err = DecideLeaveRequest{Status: "PENDING"}.ToDecision()
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestSubmitLeaveRequest_Validate(t *testing.T) {
	valid := SubmitLeaveRequest{
		EmployeeID: "emp-1",
		LeaveType:  "vacation",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-03",
		Reason:     "family trip",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *SubmitLeaveRequest)
		field  string
	}{
		{"missing type", func(r *SubmitLeaveRequest) { r.LeaveType = "" }, "leave_type"},
		{"unknown type", func(r *SubmitLeaveRequest) { r.LeaveType = "SABBATICAL" }, "leave_type"},
		{"missing start", func(r *SubmitLeaveRequest) { r.StartDate = "" }, "start_date"},
		{"bad end format", func(r *SubmitLeaveRequest) { r.EndDate = "03/01/2024" }, "end_date"},
		{"end before start", func(r *SubmitLeaveRequest) { r.EndDate = "2023-12-31" }, "end_date"},
		{"missing reason", func(r *SubmitLeaveRequest) { r.Reason = "  " }, "reason"},
		{"start year before 1970", func(r *SubmitLeaveRequest) { r.StartDate, r.EndDate = "1969-12-30", "1970-01-02" }, "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)

			err := r.Validate()
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
}

func TestSubmitLeaveRequest_ToLeaveRequest(t *testing.T) {
	blank := "  "
	r := SubmitLeaveRequest{
		EmployeeID: "emp-1",
		LeaveType:  "sick",
		StartDate:  "2024-02-28",
		EndDate:    "2024-03-01",
		Reason:     " flu ",
		Attachment: &blank,
	}.ToLeaveRequest()

	assert.Equal(t, LeaveTypeSick, r.LeaveType)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "flu", r.Reason)
	assert.Nil(t, r.Attachment)
	assert.Equal(t, 3, r.Days())
}

func TestNewBalanceSnapshot(t *testing.T) {
	b := NewLeaveBalance("emp-1", 2024, DefaultAllowance())
	b.SickDaysUsed = 2

	snap := NewBalanceSnapshot(b, 4)
	assert.Equal(t, CategoryBalance{Total: 10, Used: 2, Available: 8}, snap.Sick)
	assert.Equal(t, CategoryBalance{Total: 20, Used: 0, Available: 20}, snap.Vacation)
	assert.Equal(t, 4, snap.PendingRequests)
}

func TestListFilter_Validate(t *testing.T) {
	pending := StatusPending
	require.NoError(t, ListFilter{}.Validate())
	require.NoError(t, ListFilter{EmployeeID: "0190d2a4-0000-7000-8000-000000000000", Status: &pending, Limit: 50}.Validate())

	var verrs validator.ValidationErrors
	require.ErrorAs(t, ListFilter{EmployeeID: "emp-1"}.Validate(), &verrs)
	assert.Contains(t, verrs.ToMap(), "employee_id")

	require.ErrorAs(t, ListFilter{Limit: 501}.Validate(), &verrs)
	assert.Contains(t, verrs.ToMap(), "limit")
}
