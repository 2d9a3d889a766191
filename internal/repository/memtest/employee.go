package memtest

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.byUserIDLocked(userID)
}

func (r *employeeRepository) byUserIDLocked(userID string) (employee.Employee, error) {
	for _, e := range r.store.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepository) CreateIfAbsent(ctx context.Context, e employee.Employee) (employee.Employee, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, err := r.byUserIDLocked(e.UserID); err == nil {
		return existing, false, nil
	}

	r.store.employeeSeq++
	now := r.store.now()
	e.EmployeeCode = fmt.Sprintf("EMP%04d", r.store.employeeSeq)
	e.CreatedAt = now
	e.UpdatedAt = now
	r.store.employees[e.ID] = e
	return e, true, nil
}
