package memtest

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
)

type attendanceRepository struct {
	store *Store
}

func (r *attendanceRepository) findLocked(employeeID string, date calendar.Date) (attendance.Attendance, bool) {
	for _, a := range r.store.attendances {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return a, true
		}
	}
	return attendance.Attendance{}, false
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date calendar.Date) (*attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.findLocked(employeeID, date)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *attendanceRepository) LatestCheckIn(ctx context.Context, employeeID string) (*time.Time, error) {
	return r.latest(employeeID, func(a attendance.Attendance) *time.Time { return a.CheckIn })
}

func (r *attendanceRepository) LatestCheckOut(ctx context.Context, employeeID string) (*time.Time, error) {
	return r.latest(employeeID, func(a attendance.Attendance) *time.Time { return a.CheckOut })
}

func (r *attendanceRepository) latest(employeeID string, field func(attendance.Attendance) *time.Time) (*time.Time, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var latest *time.Time
	for _, a := range r.store.attendances {
		if a.EmployeeID != employeeID {
			continue
		}
		if t := field(a); t != nil && (latest == nil || t.After(*latest)) {
			v := *t
			latest = &v
		}
	}
	return latest, nil
}

func (r *attendanceRepository) CreateCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.findLocked(a.EmployeeID, a.Date); ok {
		return existing, false, nil
	}

	now := r.store.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.store.attendances[a.ID] = a
	return a, true, nil
}

func (r *attendanceRepository) CompleteCheckOut(ctx context.Context, id string, at time.Time) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.attendances[id]
	if !ok || a.CheckIn == nil || a.CheckOut != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	a.CheckOut = &at
	a.UpdatedAt = r.store.now()
	r.store.attendances[id] = a
	return a, nil
}

func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to *calendar.Date) ([]attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records := make([]attendance.Attendance, 0)
	for _, a := range r.store.attendances {
		if a.EmployeeID != employeeID {
			continue
		}
		if from != nil && a.Date.Before(*from) {
			continue
		}
		if to != nil && a.Date.After(*to) {
			continue
		}
		records = append(records, a)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records, nil
}
