package employee

import "github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"

type ProvisionRequest struct {
	UserID   string
	Position string
}

func (r ProvisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if len(r.Position) > 100 {
		errs.Add("position", "position must be at most 100 characters")
	}

	return errs.Err()
}

type EmployeeResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	EmployeeCode string `json:"employee_code"`
	Position     string `json:"position"`
	HireDate     string `json:"hire_date"`
	Status       string `json:"status"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		EmployeeCode: e.EmployeeCode,
		Position:     e.Position,
		HireDate:     e.HireDate.String(),
		Status:       string(e.Status),
	}
}
