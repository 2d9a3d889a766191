package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AttendanceServiceImpl struct {
	txManager      database.Transactor
	attendanceRepo attendance.AttendanceRepository
	outboxRepo     outbox.OutboxRepository
	clock          clock.Clock
	policy         Policy
	logger         *zap.Logger
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	if err := requireEmployeeID(employeeID); err != nil {
		return attendance.Attendance{}, err
	}

	now := s.clock.Now()
	today := calendar.Of(now, s.clock.Location())

	var record attendance.Attendance
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
		if err != nil {
			return err
		}
		if existing != nil {
			return checkInConflict(*existing)
		}

		lastCheckIn, err := s.lastAction(ctx, employeeID, nil, s.attendanceRepo.LatestCheckIn)
		if err != nil {
			return err
		}
		if withinCooldown(lastCheckIn, now, s.policy.CheckInCooldown) {
			return attendance.ErrRateLimited
		}

		checkIn := now
		stored, created, err := s.attendanceRepo.CreateCheckIn(ctx, attendance.Attendance{
			ID:         uuid.Must(uuid.NewV7()).String(),
			EmployeeID: employeeID,
			Date:       today,
			CheckIn:    &checkIn,
			Status:     s.policy.StatusAt(now),
		})
		if err != nil {
			return err
		}
		if !created {
			// Lost the race against a concurrent check-in for the same day.
			return checkInConflict(stored)
		}

		record = stored
		return outbox.Record(ctx, s.outboxRepo, attendance.AggregateType, stored.ID,
			attendance.EventCheckedIn, attendance.NewEvent(stored, now))
	})
	if err != nil {
		s.reject("check_in", employeeID, err)
		return attendance.Attendance{}, err
	}

	metrics.RecordCheckIn(string(record.Status))
	s.logger.Info("checked in",
		zap.String("employee_id", employeeID),
		zap.String("attendance_id", record.ID),
		zap.String("date", today.String()),
		zap.String("status", string(record.Status)),
	)
	return record, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	if err := requireEmployeeID(employeeID); err != nil {
		return attendance.Attendance{}, err
	}

	now := s.clock.Now()
	today := calendar.Of(now, s.clock.Location())

	var record attendance.Attendance
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
		if err != nil {
			return err
		}
		if existing == nil || existing.CheckIn == nil {
			return attendance.ErrNoCheckIn
		}
		if existing.CheckOut != nil {
			return attendance.ErrAlreadyCheckedOut
		}

		lastCheckOut, err := s.lastAction(ctx, employeeID, existing.CheckOut, s.attendanceRepo.LatestCheckOut)
		if err != nil {
			return err
		}
		if withinCooldown(lastCheckOut, now, s.policy.CheckOutCooldown) {
			return attendance.ErrRateLimited
		}

		if now.Sub(*existing.CheckIn) < s.policy.MinimumDuration {
			return attendance.ErrMinimumDurationNotMet
		}

		updated, err := s.attendanceRepo.CompleteCheckOut(ctx, existing.ID, now)
		if err != nil {
			return err
		}

		record = updated
		return outbox.Record(ctx, s.outboxRepo, attendance.AggregateType, updated.ID,
			attendance.EventCheckedOut, attendance.NewEvent(updated, now))
	})
	if err != nil {
		s.reject("check_out", employeeID, err)
		return attendance.Attendance{}, err
	}

	metrics.RecordCheckOut()
	s.logger.Info("checked out",
		zap.String("employee_id", employeeID),
		zap.String("attendance_id", record.ID),
		zap.Duration("worked", record.WorkDuration()),
	)
	return record, nil
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context, employeeID string) (attendance.TodayStatus, error) {
	if err := requireEmployeeID(employeeID); err != nil {
		return attendance.TodayStatus{}, err
	}

	today := calendar.Of(s.clock.Now(), s.clock.Location())

	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return attendance.TodayStatus{}, err
	}

	status := attendance.TodayStatus{Date: today, Attendance: record}
	switch status.State() {
	case attendance.StateNotStarted:
		status.CanCheckIn = true
	case attendance.StateCheckedIn:
		status.CanCheckOut = true
	}
	return status, nil
}

// History implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) History(ctx context.Context, employeeID string, filter attendance.HistoryFilter) ([]attendance.Attendance, error) {
	if err := requireEmployeeID(employeeID); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	from, to := filter.Range()
	return s.attendanceRepo.ListByEmployee(ctx, employeeID, from, to)
}

// lastAction picks the instant the cooldown is measured from according to the policy scope.
func (s *AttendanceServiceImpl) lastAction(
	ctx context.Context,
	employeeID string,
	todays *time.Time,
	latest func(ctx context.Context, employeeID string) (*time.Time, error),
) (*time.Time, error) {
	if s.policy.CooldownScope == CooldownPerDay {
		return todays, nil
	}
	return latest(ctx, employeeID)
}

func (s *AttendanceServiceImpl) reject(operation, employeeID string, err error) {
	reason, known := rejectionReason(err)
	if !known {
		s.logger.Error(operation+" failed", zap.String("employee_id", employeeID), zap.Error(err))
		return
	}
	metrics.RecordAttendanceRejection(operation, reason)
	s.logger.Debug(operation+" refused", zap.String("employee_id", employeeID), zap.String("reason", reason))
}

func checkInConflict(existing attendance.Attendance) error {
	if existing.CheckOut != nil {
		return attendance.ErrAlreadyCompleted
	}
	return attendance.ErrAlreadyCheckedIn
}

func rejectionReason(err error) (string, bool) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		return "already_checked_in", true
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		return "already_completed", true
	case errors.Is(err, attendance.ErrNoCheckIn):
		return "no_check_in", true
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		return "already_checked_out", true
	case errors.Is(err, attendance.ErrRateLimited):
		return "rate_limited", true
	case errors.Is(err, attendance.ErrMinimumDurationNotMet):
		return "minimum_duration", true
	case errors.As(err, &verrs):
		return "validation", true
	}
	return "", false
}

func requireEmployeeID(employeeID string) error {
	if validator.IsEmpty(employeeID) {
		return validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	return nil
}

func NewAttendanceService(
	txManager database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	outboxRepo outbox.OutboxRepository,
	clk clock.Clock,
	policy Policy,
	log ...*zap.Logger,
) attendance.AttendanceService {
	var base *zap.Logger
	if len(log) > 0 {
		base = log[0]
	}
	return &AttendanceServiceImpl{
		txManager:      txManager,
		attendanceRepo: attendanceRepo,
		outboxRepo:     outboxRepo,
		clock:          clk,
		policy:         policy,
		logger:         logger.Named(base, "attendance.service"),
	}
}
