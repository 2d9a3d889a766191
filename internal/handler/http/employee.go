package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
)

type EmployeeHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct{}

func NewEmployeeHandler() EmployeeHandler {
	return &employeeHandlerImpl{}
}

// Me returns the caller's employee record, provisioned on first use by middleware.ResolveEmployee.
func (h *employeeHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, employee.NewEmployeeResponse(emp))
}
