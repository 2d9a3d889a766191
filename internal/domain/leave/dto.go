package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

type SubmitLeaveRequest struct {
	EmployeeID string  `json:"-"`
	LeaveType  string  `json:"leave_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Reason     string  `json:"reason"`
	Attachment *string `json:"attachment,omitempty"`
}

func (r SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}

	if validator.IsEmpty(r.LeaveType) {
		errs.Add("leave_type", "leave_type is required")
	} else if !LeaveType(strings.ToUpper(r.LeaveType)).IsValid() {
		errs.Add("leave_type", "leave_type must be one of VACATION, SICK, PERSONAL, UNPAID")
	}

	start, startErr := calendar.Parse(r.StartDate)
	if validator.IsEmpty(r.StartDate) {
		errs.Add("start_date", "start_date is required")
	} else if startErr != nil {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	} else if !validator.IsValidYear(start.Year()) {
		errs.Add("start_date", "start_date year is out of range")
	}

	end, endErr := calendar.Parse(r.EndDate)
	if validator.IsEmpty(r.EndDate) {
		errs.Add("end_date", "end_date is required")
	} else if endErr != nil {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}

	if startErr == nil && endErr == nil && end.Before(start) {
		errs.Add("end_date", "end_date must be on or after start_date")
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must be at most 1000 characters")
	}

	if r.Attachment != nil && len(*r.Attachment) > 500 {
		errs.Add("attachment", "attachment reference must be at most 500 characters")
	}

	return errs.Err()
}

// ToLeaveRequest assumes Validate has passed.
func (r SubmitLeaveRequest) ToLeaveRequest() LeaveRequest {
	start, _ := calendar.Parse(r.StartDate)
	end, _ := calendar.Parse(r.EndDate)

	var attachment *string
	if r.Attachment != nil && !validator.IsEmpty(*r.Attachment) {
		v := strings.TrimSpace(*r.Attachment)
		attachment = &v
	}

	return LeaveRequest{
		EmployeeID: r.EmployeeID,
		LeaveType:  LeaveType(strings.ToUpper(r.LeaveType)),
		StartDate:  start,
		EndDate:    end,
		Reason:     strings.TrimSpace(r.Reason),
		Attachment: attachment,
		Status:     StatusPending,
	}
}

type DecideLeaveRequest struct {
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// ToDecision maps the wire form onto a Decision. Validation of the reason happens in Decision.Validate.
func (r DecideLeaveRequest) ToDecision() (Decision, error) {
	switch Status(strings.ToUpper(r.Status)) {
	case StatusApproved:
		return Approve(), nil
	case StatusRejected:
		reason := ""
		if r.RejectionReason != nil {
			reason = *r.RejectionReason
		}
		return Reject(reason), nil
	}
	return Decision{}, ErrInvalidDecision
}

// ListFilter scopes List. An empty EmployeeID lists every employee's requests.
type ListFilter struct {
	EmployeeID string
	Status     *Status
	Limit      int
}

func (f ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Status != nil && !f.Status.IsValid() {
		errs.Add("status", "status must be one of PENDING, APPROVED, REJECTED, CANCELLED")
	}
	if f.Limit < 0 || f.Limit > 500 {
		errs.Add("limit", "limit must be between 0 and 500")
	}

	return errs.Err()
}

// Viewer identifies who is asking for PendingCount.
type Viewer struct {
	EmployeeID string
	IsManager  bool
}

// ========================================
// RESPONSE DTOs
// ========================================

type CategoryBalance struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

type BalanceSnapshot struct {
	EmployeeID      string          `json:"employee_id"`
	Year            int             `json:"year"`
	Vacation        CategoryBalance `json:"vacation"`
	Sick            CategoryBalance `json:"sick"`
	Personal        CategoryBalance `json:"personal"`
	PendingRequests int             `json:"pending_requests"`
}

func NewBalanceSnapshot(b LeaveBalance, pending int) BalanceSnapshot {
	bucket := func(c Category) CategoryBalance {
		return CategoryBalance{Total: b.Total(c), Used: b.Used(c), Available: b.Available(c)}
	}
	return BalanceSnapshot{
		EmployeeID:      b.EmployeeID,
		Year:            b.Year,
		Vacation:        bucket(CategoryVacation),
		Sick:            bucket(CategorySick),
		Personal:        bucket(CategoryPersonal),
		PendingRequests: pending,
	}
}

type LeaveRequestResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Reason          string  `json:"reason"`
	Attachment      *string `json:"attachment"`
	Status          string  `json:"status"`
	ApproverID      *string `json:"approver_id"`
	DecidedAt       *string `json:"decided_at"`
	RejectionReason *string `json:"rejection_reason"`
	CreatedAt       string  `json:"created_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		LeaveType:       string(r.LeaveType),
		StartDate:       r.StartDate.String(),
		EndDate:         r.EndDate.String(),
		Days:            r.Days(),
		Reason:          r.Reason,
		Attachment:      r.Attachment,
		Status:          string(r.Status),
		ApproverID:      r.ApproverID,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		v := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

type ListLeaveRequestResponse struct {
	Requests []LeaveRequestResponse `json:"requests"`
	Total    int                    `json:"total"`
}

type PendingCountResponse struct {
	Count int `json:"count"`
}
