package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `id, employee_id, leave_type, start_date, end_date, reason, attachment,
	status, approver_id, decided_at, rejection_reason, created_at, updated_at`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var (
		req        leave.LeaveRequest
		leaveType  string
		status     string
		start, end time.Time
	)
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &leaveType, &start, &end, &req.Reason, &req.Attachment,
		&status, &req.ApproverID, &req.DecidedAt, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return leave.LeaveRequest{}, err
	}
	req.LeaveType = leave.LeaveType(leaveType)
	req.Status = leave.Status(status)
	req.StartDate = calendar.FromTime(start)
	req.EndDate = calendar.FromTime(end)
	return req, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, reason, attachment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		req.ID, req.EmployeeID, string(req.LeaveType), req.StartDate.Time(), req.EndDate.Time(),
		req.Reason, req.Attachment, string(req.Status),
	))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("get leave request %s: %w", id, err)
	}
	return req, nil
}

// Transition implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Transition(ctx context.Context, id string, t leave.Transition) (leave.LeaveRequest, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2,
		    approver_id = $3,
		    decided_at = $4,
		    rejection_reason = $5,
		    updated_at = NOW()
		WHERE id = $1 AND status = $6
		RETURNING ` + leaveRequestColumns

	req, err := scanLeaveRequest(q.QueryRow(ctx, query,
		id, string(t.To), t.ApproverID, t.DecidedAt, t.RejectionReason, string(leave.StatusPending),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, false, nil
		}
		return leave.LeaveRequest{}, false, fmt.Errorf("transition leave request %s: %w", id, err)
	}
	return req, true, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []interface{}
	)
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// CountByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountByStatus(ctx context.Context, employeeID string, status leave.Status) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*) FROM leave_requests
		WHERE status = $1 AND ($2 = '' OR employee_id::text = $2)`

	var count int
	if err := q.QueryRow(ctx, query, string(status), employeeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s leave requests: %w", status, err)
	}
	return count, nil
}

// CountDecidedSince implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountDecidedSince(ctx context.Context, employeeID string, since time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*) FROM leave_requests
		WHERE employee_id = $1
		  AND status IN ($2, $3)
		  AND decided_at >= $4`

	var count int
	if err := q.QueryRow(ctx, query,
		employeeID, string(leave.StatusApproved), string(leave.StatusRejected), since,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count decided leave requests for %s: %w", employeeID, err)
	}
	return count, nil
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}
