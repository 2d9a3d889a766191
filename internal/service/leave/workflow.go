package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recentDecisionWindow bounds the decisions an employee is notified about by PendingCount.
const recentDecisionWindow = 7 * 24 * time.Hour

type WorkflowServiceImpl struct {
	txManager    database.Transactor
	requestRepo  leave.LeaveRequestRepository
	employeeRepo employee.EmployeeRepository
	ledger       leave.LedgerService
	outboxRepo   outbox.OutboxRepository
	clock        clock.Clock
	logger       *zap.Logger
}

// Submit implements leave.WorkflowService.
func (s *WorkflowServiceImpl) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	if !validator.IsValidUUID(req.EmployeeID) {
		return leave.LeaveRequest{}, employee.ErrEmployeeNotFound
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRequest{}, err
	}

	request := req.ToLeaveRequest()
	request.ID = uuid.Must(uuid.NewV7()).String()

	var created leave.LeaveRequest
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.requestRepo.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return outbox.Record(ctx, s.outboxRepo, leave.AggregateType, created.ID,
			leave.EventSubmitted, leave.NewEvent(created, s.clock.Now()))
	})
	if err != nil {
		s.logger.Error("submit leave request failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return leave.LeaveRequest{}, err
	}

	metrics.RecordLeaveSubmission(string(created.LeaveType))
	s.logger.Info("leave request submitted",
		zap.String("request_id", created.ID),
		zap.String("employee_id", created.EmployeeID),
		zap.String("leave_type", string(created.LeaveType)),
		zap.Int("days", created.Days()),
	)
	return created, nil
}

// Decide implements leave.WorkflowService. The status change and the ledger charge commit together.
func (s *WorkflowServiceImpl) Decide(ctx context.Context, requestID string, approverID string, decision leave.Decision) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(requestID) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if validator.IsEmpty(approverID) {
		return leave.LeaveRequest{}, validator.ValidationErrors{{Field: "approver_id", Message: "approver_id is required"}}
	}
	if err := decision.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	now := s.clock.Now()
	transition := leave.Transition{
		To:         decision.Status(),
		ApproverID: approverID,
		DecidedAt:  now,
	}
	if !decision.IsApproval() {
		reason := decision.Reason()
		transition.RejectionReason = &reason
	}

	var (
		decided  leave.LeaveRequest
		charged  leave.Category
		chargeOK bool
	)
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		updated, ok, err := s.requestRepo.Transition(ctx, requestID, transition)
		if err != nil {
			return fmt.Errorf("failed to transition leave request: %w", err)
		}
		if !ok {
			current, err := s.requestRepo.GetByID(ctx, requestID)
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: request is %s", leave.ErrLeaveRequestAlreadyDecided, current.Status)
		}

		if decision.IsApproval() {
			if category, mapped := updated.LeaveType.Category(); mapped {
				if _, err := s.ledger.IncrementUsed(ctx, updated.EmployeeID, updated.StartDate.Year(), category, updated.Days()); err != nil {
					return err
				}
				charged, chargeOK = category, true
			}
		}

		decided = updated
		return outbox.Record(ctx, s.outboxRepo, leave.AggregateType, updated.ID,
			leave.EventDecided, leave.NewEvent(updated, now))
	})
	if err != nil {
		if !isDecisionConflict(err) {
			s.logger.Error("decide leave request failed", zap.String("request_id", requestID), zap.Error(err))
		}
		return leave.LeaveRequest{}, err
	}

	metrics.RecordLeaveDecision(string(decided.Status))
	if chargeOK {
		metrics.RecordLedgerUsage(string(charged), decided.Days())
	}
	s.logger.Info("leave request decided",
		zap.String("request_id", decided.ID),
		zap.String("employee_id", decided.EmployeeID),
		zap.String("status", string(decided.Status)),
		zap.String("approver_id", approverID),
	)
	return decided, nil
}

// GetLeaveBalance implements leave.WorkflowService.
func (s *WorkflowServiceImpl) GetLeaveBalance(ctx context.Context, employeeID string, year int) (leave.BalanceSnapshot, error) {
	if !validator.IsValidUUID(employeeID) {
		return leave.BalanceSnapshot{}, employee.ErrEmployeeNotFound
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return leave.BalanceSnapshot{}, err
	}

	balance, err := s.ledger.EnsureBalance(ctx, employeeID, year)
	if err != nil {
		return leave.BalanceSnapshot{}, err
	}

	pending, err := s.requestRepo.CountByStatus(ctx, employeeID, leave.StatusPending)
	if err != nil {
		return leave.BalanceSnapshot{}, fmt.Errorf("failed to count pending requests: %w", err)
	}

	return leave.NewBalanceSnapshot(balance, pending), nil
}

// List implements leave.WorkflowService.
func (s *WorkflowServiceImpl) List(ctx context.Context, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.requestRepo.List(ctx, filter)
}

// PendingCount implements leave.WorkflowService. Managers see the approval queue;
// employees see how many of their requests were decided recently.
func (s *WorkflowServiceImpl) PendingCount(ctx context.Context, viewer leave.Viewer) (int, error) {
	if viewer.IsManager {
		return s.requestRepo.CountByStatus(ctx, "", leave.StatusPending)
	}
	if validator.IsEmpty(viewer.EmployeeID) {
		return 0, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	return s.requestRepo.CountDecidedSince(ctx, viewer.EmployeeID, s.clock.Now().Add(-recentDecisionWindow))
}

func isDecisionConflict(err error) bool {
	var verrs validator.ValidationErrors
	return errors.Is(err, leave.ErrLeaveRequestAlreadyDecided) ||
		errors.Is(err, leave.ErrLeaveRequestNotFound) ||
		errors.Is(err, leave.ErrInsufficientBalance) ||
		errors.As(err, &verrs)
}

func NewWorkflowService(
	txManager database.Transactor,
	requestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	ledger leave.LedgerService,
	outboxRepo outbox.OutboxRepository,
	clk clock.Clock,
	log ...*zap.Logger,
) leave.WorkflowService {
	var base *zap.Logger
	if len(log) > 0 {
		base = log[0]
	}
	return &WorkflowServiceImpl{
		txManager:    txManager,
		requestRepo:  requestRepo,
		employeeRepo: employeeRepo,
		ledger:       ledger,
		outboxRepo:   outboxRepo,
		clock:        clk,
		logger:       logger.Named(base, "leave.workflow"),
	}
}
