package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `id, employee_id, date, check_in_time, check_out_time, status, created_at, updated_at`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		a      attendance.Attendance
		date   time.Time
		status string
	)
	if err := row.Scan(
		&a.ID, &a.EmployeeID, &date, &a.CheckIn, &a.CheckOut, &status, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return attendance.Attendance{}, err
	}
	a.Date = calendar.FromTime(date)
	a.Status = attendance.Status(status)
	return a, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date calendar.Date) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE employee_id = $1 AND date = $2`

	a, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date.Time()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance for %s on %s: %w", employeeID, date, err)
	}
	return &a, nil
}

// LatestCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) LatestCheckIn(ctx context.Context, employeeID string) (*time.Time, error) {
	return r.latest(ctx, "check_in_time", employeeID)
}

// LatestCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) LatestCheckOut(ctx context.Context, employeeID string) (*time.Time, error) {
	return r.latest(ctx, "check_out_time", employeeID)
}

// column is one of two constants above, never caller input.
func (r *attendanceRepositoryImpl) latest(ctx context.Context, column, employeeID string) (*time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT MAX(%s) FROM attendance_records WHERE employee_id = $1`, column)

	var latest *time.Time
	if err := q.QueryRow(ctx, query, employeeID).Scan(&latest); err != nil {
		return nil, fmt.Errorf("latest %s for %s: %w", column, employeeID, err)
	}
	return latest, nil
}

// CreateCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CreateCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (id, employee_id, date, check_in_time, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		a.ID, a.EmployeeID, a.Date.Time(), a.CheckIn, string(a.Status),
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attendance.Attendance{}, false, fmt.Errorf("insert check-in: %w", err)
	}

	existing, err := r.GetByEmployeeAndDate(ctx, a.EmployeeID, a.Date)
	if err != nil {
		return attendance.Attendance{}, false, err
	}
	if existing == nil {
		// Conflicting row vanished between statements; only possible with concurrent deletes.
		return attendance.Attendance{}, false, fmt.Errorf("check-in for %s on %s conflicted but no row found", a.EmployeeID, a.Date)
	}
	return *existing, false, nil
}

// CompleteCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CompleteCheckOut(ctx context.Context, id string, at time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET check_out_time = $2, updated_at = NOW()
		WHERE id = $1
		  AND check_in_time IS NOT NULL
		  AND check_out_time IS NULL
		RETURNING ` + attendanceColumns

	a, err := scanAttendance(q.QueryRow(ctx, query, id, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("complete check-out %s: %w", id, err)
	}
	return a, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to *calendar.Date) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions = []string{"employee_id = $1"}
		args       = []interface{}{employeeID}
	)
	if from != nil {
		args = append(args, from.Time())
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, to.Time())
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY date DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", employeeID, err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}

	return records, rows.Err()
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}
