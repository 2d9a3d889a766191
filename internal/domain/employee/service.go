package employee

import "context"

// EmployeeDirectory maps authenticated users to employees.
type EmployeeDirectory interface {
	// ResolveOrProvision returns the user's employee, creating it together with a
	// default leave balance for the current year on first use. Safe to call concurrently.
	ResolveOrProvision(ctx context.Context, req ProvisionRequest) (Employee, error)

	// Lookup returns ErrEmployeeNotFound instead of provisioning.
	Lookup(ctx context.Context, userID string) (Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)
}
