package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LedgerServiceImpl struct {
	txManager      database.Transactor
	balanceRepo    leave.LeaveBalanceRepository
	allowance      leave.Allowance
	enforceBalance bool
	logger         *zap.Logger
}

// EnsureBalance implements leave.LedgerService.
func (s *LedgerServiceImpl) EnsureBalance(ctx context.Context, employeeID string, year int) (leave.LeaveBalance, error) {
	if validator.IsEmpty(employeeID) {
		return leave.LeaveBalance{}, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	if !validator.IsValidYear(year) {
		return leave.LeaveBalance{}, validator.ValidationErrors{{Field: "year", Message: "year is out of range"}}
	}

	balance := leave.NewLeaveBalance(employeeID, year, s.allowance)
	balance.ID = uuid.Must(uuid.NewV7()).String()

	stored, err := s.balanceRepo.Ensure(ctx, balance)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to ensure leave balance: %w", err)
	}
	return stored, nil
}

// IncrementUsed implements leave.LedgerService.
func (s *LedgerServiceImpl) IncrementUsed(ctx context.Context, employeeID string, year int, category leave.Category, days int) (leave.LeaveBalance, error) {
	if !category.IsValid() {
		return leave.LeaveBalance{}, leave.ErrInvalidCategory
	}
	if days <= 0 {
		return leave.LeaveBalance{}, leave.ErrInvalidDays
	}

	var updated leave.LeaveBalance
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.EnsureBalance(ctx, employeeID, year); err != nil {
			return err
		}

		var err error
		updated, err = s.balanceRepo.IncrementUsed(ctx, employeeID, year, category, days, s.enforceBalance)
		return err
	})
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	if updated.Available(category) < 0 {
		s.logger.Warn("leave usage exceeds allowance",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.String("category", string(category)),
			zap.Int("available", updated.Available(category)),
		)
	}
	return updated, nil
}

// AvailableDays implements leave.LedgerService.
func (s *LedgerServiceImpl) AvailableDays(balance leave.LeaveBalance, category leave.Category) int {
	return balance.Available(category)
}

// NewLedgerService builds the ledger. enforceBalance refuses increments past the allowance
// instead of letting used exceed total.
func NewLedgerService(
	txManager database.Transactor,
	balanceRepo leave.LeaveBalanceRepository,
	allowance leave.Allowance,
	enforceBalance bool,
	log ...*zap.Logger,
) leave.LedgerService {
	var base *zap.Logger
	if len(log) > 0 {
		base = log[0]
	}
	return &LedgerServiceImpl{
		txManager:      txManager,
		balanceRepo:    balanceRepo,
		allowance:      allowance,
		enforceBalance: enforceBalance,
		logger:         logger.Named(base, "leave.ledger"),
	}
}
