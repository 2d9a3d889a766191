package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, user_id, employee_code, position, hire_date, status, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		e        employee.Employee
		hireDate time.Time
		status   string
	)
	if err := row.Scan(
		&e.ID, &e.UserID, &e.EmployeeCode, &e.Position, &hireDate, &status, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return employee.Employee{}, err
	}
	e.HireDate = calendar.FromTime(hireDate)
	e.Status = employee.Status(status)
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee %s: %w", id, err)
	}
	return e, nil
}

// GetByUserID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE user_id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee by user %s: %w", userID, err)
	}
	return e, nil
}

// CreateIfAbsent implements employee.EmployeeRepository.
// employee_code comes from the column default (employee_code_seq), so concurrent inserts never share a code.
func (r *employeeRepositoryImpl) CreateIfAbsent(ctx context.Context, e employee.Employee) (employee.Employee, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (id, user_id, position, hire_date, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		e.ID, e.UserID, e.Position, e.HireDate.Time(), string(e.Status),
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return employee.Employee{}, false, fmt.Errorf("insert employee for user %s: %w", e.UserID, err)
	}

	existing, err := r.GetByUserID(ctx, e.UserID)
	if err != nil {
		return employee.Employee{}, false, err
	}
	return existing, false, nil
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}
