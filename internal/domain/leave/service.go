package leave

import "context"

// LedgerService keeps per-employee, per-year leave balances.
type LedgerService interface {
	EnsureBalance(ctx context.Context, employeeID string, year int) (LeaveBalance, error)
	IncrementUsed(ctx context.Context, employeeID string, year int, category Category, days int) (LeaveBalance, error)
	AvailableDays(balance LeaveBalance, category Category) int
}

// WorkflowService runs leave requests from submission to decision.
type WorkflowService interface {
	Submit(ctx context.Context, req SubmitLeaveRequest) (LeaveRequest, error)
	Decide(ctx context.Context, requestID string, approverID string, decision Decision) (LeaveRequest, error)
	GetLeaveBalance(ctx context.Context, employeeID string, year int) (BalanceSnapshot, error)
	List(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	PendingCount(ctx context.Context, viewer Viewer) (int, error)
}
