package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EmployeeDirectoryImpl struct {
	txManager    database.Transactor
	employeeRepo employee.EmployeeRepository
	ledger       leave.LedgerService
	clock        clock.Clock
	logger       *zap.Logger
}

// ResolveOrProvision implements employee.EmployeeDirectory.
func (s *EmployeeDirectoryImpl) ResolveOrProvision(ctx context.Context, req employee.ProvisionRequest) (employee.Employee, error) {
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	existing, err := s.employeeRepo.GetByUserID(ctx, req.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.Employee{}, fmt.Errorf("failed to get employee by user ID: %w", err)
	}

	position := strings.TrimSpace(req.Position)
	if position == "" {
		position = employee.DefaultPosition
	}

	now := s.clock.Now()
	candidate := employee.Employee{
		ID:       uuid.Must(uuid.NewV7()).String(),
		UserID:   req.UserID,
		Position: position,
		HireDate: calendar.Of(now, s.clock.Location()),
		Status:   employee.StatusActive,
	}

	var (
		stored  employee.Employee
		created bool
	)
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		stored, created, err = s.employeeRepo.CreateIfAbsent(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}
		if !created {
			return nil
		}
		_, err = s.ledger.EnsureBalance(ctx, stored.ID, now.In(s.clock.Location()).Year())
		return err
	})
	if err != nil {
		s.logger.Error("provision employee failed", zap.String("user_id", req.UserID), zap.Error(err))
		return employee.Employee{}, err
	}

	if created {
		s.logger.Info("employee provisioned",
			zap.String("user_id", stored.UserID),
			zap.String("employee_id", stored.ID),
			zap.String("employee_code", stored.EmployeeCode),
		)
	}
	return stored, nil
}

// Lookup implements employee.EmployeeDirectory.
func (s *EmployeeDirectoryImpl) Lookup(ctx context.Context, userID string) (employee.Employee, error) {
	if validator.IsEmpty(userID) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return s.employeeRepo.GetByUserID(ctx, userID)
}

// GetByID implements employee.EmployeeDirectory.
func (s *EmployeeDirectoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if !validator.IsValidUUID(id) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return s.employeeRepo.GetByID(ctx, id)
}

func NewEmployeeDirectory(
	txManager database.Transactor,
	employeeRepo employee.EmployeeRepository,
	ledger leave.LedgerService,
	clk clock.Clock,
	log ...*zap.Logger,
) employee.EmployeeDirectory {
	var base *zap.Logger
	if len(log) > 0 {
		base = log[0]
	}
	return &EmployeeDirectoryImpl{
		txManager:    txManager,
		employeeRepo: employeeRepo,
		ledger:       ledger,
		clock:        clk,
		logger:       logger.Named(base, "employee.directory"),
	}
}
