package memtest

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
)

type leaveBalanceRepository struct {
	store *Store
}

func (r *leaveBalanceRepository) Ensure(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := balanceKey{employeeID: b.EmployeeID, year: b.Year}
	if existing, ok := r.store.balances[key]; ok {
		return existing, nil
	}

	now := r.store.now()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.store.balances[key] = b
	return b, nil
}

func (r *leaveBalanceRepository) GetByEmployeeAndYear(ctx context.Context, employeeID string, year int) (leave.LeaveBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.balances[balanceKey{employeeID: employeeID, year: year}]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
	}
	return b, nil
}

func (r *leaveBalanceRepository) IncrementUsed(ctx context.Context, employeeID string, year int, category leave.Category, days int, capAtTotal bool) (leave.LeaveBalance, error) {
	if !category.IsValid() {
		return leave.LeaveBalance{}, leave.ErrInvalidCategory
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := balanceKey{employeeID: employeeID, year: year}
	b, ok := r.store.balances[key]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
	}
	if capAtTotal && b.Used(category)+days > b.Total(category) {
		return leave.LeaveBalance{}, leave.ErrInsufficientBalance
	}

	switch category {
	case leave.CategoryVacation:
		b.VacationDaysUsed += days
	case leave.CategorySick:
		b.SickDaysUsed += days
	case leave.CategoryPersonal:
		b.PersonalDaysUsed += days
	}
	b.UpdatedAt = r.store.now()
	r.store.balances[key] = b
	return b, nil
}

type leaveRequestRepository struct {
	store *Store
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.store.requests[req.ID] = req
	r.store.requestOrder = append(r.store.requestOrder, req.ID)
	return req, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	req, ok := r.store.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r *leaveRequestRepository) Transition(ctx context.Context, id string, t leave.Transition) (leave.LeaveRequest, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	req, ok := r.store.requests[id]
	if !ok || req.Status != leave.StatusPending {
		return leave.LeaveRequest{}, false, nil
	}

	approver := t.ApproverID
	decidedAt := t.DecidedAt
	req.Status = t.To
	req.ApproverID = &approver
	req.DecidedAt = &decidedAt
	req.RejectionReason = t.RejectionReason
	req.UpdatedAt = r.store.now()
	r.store.requests[id] = req
	return req, true, nil
}

// List returns newest first, mirroring ORDER BY created_at DESC.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	requests := make([]leave.LeaveRequest, 0)
	for i := len(r.store.requestOrder) - 1; i >= 0; i-- {
		req := r.store.requests[r.store.requestOrder[i]]
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		requests = append(requests, req)
		if filter.Limit > 0 && len(requests) == filter.Limit {
			break
		}
	}
	return requests, nil
}

func (r *leaveRequestRepository) CountByStatus(ctx context.Context, employeeID string, status leave.Status) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := 0
	for _, req := range r.store.requests {
		if req.Status == status && (employeeID == "" || req.EmployeeID == employeeID) {
			n++
		}
	}
	return n, nil
}

func (r *leaveRequestRepository) CountDecidedSince(ctx context.Context, employeeID string, since time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := 0
	for _, req := range r.store.requests {
		if req.EmployeeID != employeeID || req.DecidedAt == nil || req.DecidedAt.Before(since) {
			continue
		}
		if req.Status == leave.StatusApproved || req.Status == leave.StatusRejected {
			n++
		}
	}
	return n, nil
}
