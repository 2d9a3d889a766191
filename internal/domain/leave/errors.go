package leave

import "errors"

var (
	ErrLeaveRequestNotFound       = errors.New("leave request not found")
	ErrLeaveRequestAlreadyDecided = errors.New("leave request has already been decided")
	ErrLeaveBalanceNotFound       = errors.New("leave balance not found")
	ErrInsufficientBalance        = errors.New("insufficient leave balance")
	ErrInvalidCategory            = errors.New("invalid leave category")
	ErrInvalidDays                = errors.New("leave days must be positive")

	// Decision errors
	ErrInvalidDecision        = errors.New("decision must be APPROVED or REJECTED")
	ErrMissingRejectionReason = errors.New("rejection reason is required")
)
