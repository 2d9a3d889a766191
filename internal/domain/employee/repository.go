package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)

	// CreateIfAbsent inserts e unless an employee already exists for e.UserID.
	// The stored employee is returned in both cases; created reports which one happened.
	CreateIfAbsent(ctx context.Context, e Employee) (stored Employee, created bool, err error)
}
