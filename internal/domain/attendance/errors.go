package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrAlreadyCompleted = errors.New("attendance already completed for today")

	// Check-out errors
	ErrNoCheckIn             = errors.New("no check-in record found for today")
	ErrAlreadyCheckedOut     = errors.New("already checked out today")
	ErrMinimumDurationNotMet = errors.New("minimum work duration not met")

	// Shared
	ErrRateLimited = errors.New("please wait before trying again")
)
