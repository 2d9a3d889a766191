package leave

import "strings"

// Decision is the outcome an approver hands to the workflow: Approve() or Reject(reason).
// The zero value is not a decision.
type Decision struct {
	status Status
	reason string
}

func Approve() Decision {
	return Decision{status: StatusApproved}
}

func Reject(reason string) Decision {
	return Decision{status: StatusRejected, reason: strings.TrimSpace(reason)}
}

func (d Decision) Status() Status { return d.status }

func (d Decision) IsApproval() bool { return d.status == StatusApproved }

// Reason is empty for approvals.
func (d Decision) Reason() string { return d.reason }

func (d Decision) Validate() error {
	switch d.status {
	case StatusApproved:
		return nil
	case StatusRejected:
		if d.reason == "" {
			return ErrMissingRejectionReason
		}
		return nil
	}
	return ErrInvalidDecision
}
