// Package memtest implements the repository interfaces in process. It keeps the same
// uniqueness and conditional-update rules as the PostgreSQL schema and is used by
// service and handler tests.
package memtest

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
)

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	employees    map[string]employee.Employee
	employeeSeq  int
	attendances  map[string]attendance.Attendance
	balances     map[balanceKey]leave.LeaveBalance
	requests     map[string]leave.LeaveRequest
	events       []outbox.Event
	requestOrder []string

	now func() time.Time
}

type balanceKey struct {
	employeeID string
	year       int
}

func NewStore() *Store {
	return &Store{
		employees:   make(map[string]employee.Employee),
		attendances: make(map[string]attendance.Attendance),
		balances:    make(map[balanceKey]leave.LeaveBalance),
		requests:    make(map[string]leave.LeaveRequest),
		now:         time.Now,
	}
}

// SetNow replaces the source of CreatedAt/UpdatedAt stamps.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

type snapshot struct {
	employees    map[string]employee.Employee
	employeeSeq  int
	attendances  map[string]attendance.Attendance
	balances     map[balanceKey]leave.LeaveBalance
	requests     map[string]leave.LeaveRequest
	events       []outbox.Event
	requestOrder []string
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		employees:    make(map[string]employee.Employee, len(s.employees)),
		employeeSeq:  s.employeeSeq,
		attendances:  make(map[string]attendance.Attendance, len(s.attendances)),
		balances:     make(map[balanceKey]leave.LeaveBalance, len(s.balances)),
		requests:     make(map[string]leave.LeaveRequest, len(s.requests)),
		events:       append([]outbox.Event(nil), s.events...),
		requestOrder: append([]string(nil), s.requestOrder...),
	}
	for k, v := range s.employees {
		snap.employees[k] = v
	}
	for k, v := range s.attendances {
		snap.attendances[k] = v
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	return snap
}

// restore keeps the sequence where it is, as a database sequence would after a rollback.
func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees = snap.employees
	s.attendances = snap.attendances
	s.balances = snap.balances
	s.requests = snap.requests
	s.events = snap.events
	s.requestOrder = snap.requestOrder
}

type txKey struct{}

type transactor struct {
	store *Store
}

// WithinTransaction implements database.Transactor. Transactions are serialised and a
// failing fn restores the state seen when it started.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
		if err != nil {
			t.store.restore(snap)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) Transactor() database.Transactor { return &transactor{store: s} }

func (s *Store) Employees() employee.EmployeeRepository { return &employeeRepository{store: s} }

func (s *Store) Attendance() attendance.AttendanceRepository {
	return &attendanceRepository{store: s}
}

func (s *Store) LeaveBalances() leave.LeaveBalanceRepository {
	return &leaveBalanceRepository{store: s}
}

func (s *Store) LeaveRequests() leave.LeaveRequestRepository {
	return &leaveRequestRepository{store: s}
}

func (s *Store) Outbox() outbox.OutboxRepository { return &outboxRepository{store: s} }

// Events returns a copy of every recorded outbox event in insertion order.
func (s *Store) Events() []outbox.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outbox.Event(nil), s.events...)
}

// AttendanceCount returns how many attendance records exist for the employee.
func (s *Store) AttendanceCount(employeeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, a := range s.attendances {
		if a.EmployeeID == employeeID {
			n++
		}
	}
	return n
}

// BalanceCount returns how many balance rows exist for the employee.
func (s *Store) BalanceCount(employeeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k := range s.balances {
		if k.employeeID == employeeID {
			n++
		}
	}
	return n
}
