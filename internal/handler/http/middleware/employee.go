package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
)

type employeeKey struct{}

// ResolveEmployee attaches the caller's employee record, provisioning it on first use.
func ResolveEmployee(directory employee.EmployeeDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrUnauthenticated)
				return
			}

			emp, err := directory.ResolveOrProvision(r.Context(), employee.ProvisionRequest{
				UserID:   principal.UserID,
				Position: principal.Position,
			})
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithEmployee(r.Context(), emp)))
		})
	}
}

func WithEmployee(ctx context.Context, e employee.Employee) context.Context {
	return context.WithValue(ctx, employeeKey{}, e)
}

func EmployeeFromContext(ctx context.Context) (employee.Employee, bool) {
	e, ok := ctx.Value(employeeKey{}).(employee.Employee)
	return e, ok
}
