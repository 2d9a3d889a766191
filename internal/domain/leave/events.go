package leave

import "time"

const AggregateType = "leave"

const (
	EventSubmitted = "leave.submitted"
	EventDecided   = "leave.decided"
)

type Event struct {
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  LeaveType `json:"leave_type"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Days       int       `json:"days"`
	Status     Status    `json:"status"`
	ApproverID *string   `json:"approver_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(r LeaveRequest, occurredAt time.Time) Event {
	return Event{
		RequestID:  r.ID,
		EmployeeID: r.EmployeeID,
		LeaveType:  r.LeaveType,
		StartDate:  r.StartDate.String(),
		EndDate:    r.EndDate.String(),
		Days:       r.Days(),
		Status:     r.Status,
		ApproverID: r.ApproverID,
		OccurredAt: occurredAt.UTC(),
	}
}
