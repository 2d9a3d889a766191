package leave

import (
	"context"
	"time"
)

type LeaveBalanceRepository interface {
	// Ensure inserts b unless a row exists for (b.EmployeeID, b.Year) and returns the stored row.
	// Concurrent callers never produce two rows.
	Ensure(ctx context.Context, b LeaveBalance) (LeaveBalance, error)

	GetByEmployeeAndYear(ctx context.Context, employeeID string, year int) (LeaveBalance, error)

	// IncrementUsed atomically adds days to the used counter of category.
	// With capAtTotal, the update is refused with ErrInsufficientBalance when it would exceed the total.
	IncrementUsed(ctx context.Context, employeeID string, year int, category Category, days int, capAtTotal bool) (LeaveBalance, error)
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, r LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// Transition applies t only while the request is still PENDING.
	// ok is false when no PENDING request with that id exists.
	Transition(ctx context.Context, id string, t Transition) (updated LeaveRequest, ok bool, err error)

	List(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)

	// CountByStatus counts requests in status; an empty employeeID counts across all employees.
	CountByStatus(ctx context.Context, employeeID string, status Status) (int, error)

	// CountDecidedSince counts the employee's requests approved or rejected at or after since.
	CountDecidedSince(ctx context.Context, employeeID string, since time.Time) (int, error)
}
