package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// queryInt returns nil when the parameter is absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, validator.ValidationErrors{{Field: name, Message: name + " must be an integer"}}
	}
	return &v, nil
}

func currentEmployee(r *http.Request) (employee.Employee, error) {
	emp, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		return employee.Employee{}, auth.ErrUnauthenticated
	}
	return emp, nil
}

func currentPrincipal(r *http.Request) (auth.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return auth.Principal{}, auth.ErrUnauthenticated
	}
	return p, nil
}
