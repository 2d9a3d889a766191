package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveBalanceColumns = `id, employee_id, year,
	vacation_days_total, vacation_days_used,
	sick_days_total, sick_days_used,
	personal_days_total, personal_days_used,
	created_at, updated_at`

type balanceColumns struct {
	total string
	used  string
}

// Every SQL column name interpolated by this file comes from this table.
var leaveBalanceCategoryColumns = map[leave.Category]balanceColumns{
	leave.CategoryVacation: {total: "vacation_days_total", used: "vacation_days_used"},
	leave.CategorySick:     {total: "sick_days_total", used: "sick_days_used"},
	leave.CategoryPersonal: {total: "personal_days_total", used: "personal_days_used"},
}

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.Year,
		&b.VacationDaysTotal, &b.VacationDaysUsed,
		&b.SickDaysTotal, &b.SickDaysUsed,
		&b.PersonalDaysTotal, &b.PersonalDaysUsed,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Ensure implements leave.LeaveBalanceRepository.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict, in one statement.
func (r *leaveBalanceRepositoryImpl) Ensure(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (
			id, employee_id, year,
			vacation_days_total, sick_days_total, personal_days_total
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id, year) DO UPDATE SET employee_id = EXCLUDED.employee_id
		RETURNING ` + leaveBalanceColumns

	stored, err := scanLeaveBalance(q.QueryRow(ctx, query,
		b.ID, b.EmployeeID, b.Year,
		b.VacationDaysTotal, b.SickDaysTotal, b.PersonalDaysTotal,
	))
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("ensure leave balance %s/%d: %w", b.EmployeeID, b.Year, err)
	}
	return stored, nil
}

// GetByEmployeeAndYear implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByEmployeeAndYear(ctx context.Context, employeeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveBalanceColumns + ` FROM leave_balances WHERE employee_id = $1 AND year = $2`

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("get leave balance %s/%d: %w", employeeID, year, err)
	}
	return b, nil
}

// IncrementUsed implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) IncrementUsed(ctx context.Context, employeeID string, year int, category leave.Category, days int, capAtTotal bool) (leave.LeaveBalance, error) {
	cols, ok := leaveBalanceCategoryColumns[category]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrInvalidCategory
	}

	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE leave_balances
		SET %[1]s = %[1]s + $3, updated_at = NOW()
		WHERE employee_id = $1 AND year = $2`, cols.used)
	if capAtTotal {
		query += fmt.Sprintf(`
		  AND %s + $3 <= %s`, cols.used, cols.total)
	}
	query += `
		RETURNING ` + leaveBalanceColumns

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, employeeID, year, days))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveBalance{}, fmt.Errorf("increment %s for %s/%d: %w", cols.used, employeeID, year, err)
	}

	// Nothing updated: either no row, or the cap refused the update.
	if _, getErr := r.GetByEmployeeAndYear(ctx, employeeID, year); getErr != nil {
		return leave.LeaveBalance{}, getErr
	}
	return leave.LeaveBalance{}, leave.ErrInsufficientBalance
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}
