package auth

import "errors"

var (
	ErrUnauthenticated       = errors.New("authentication required")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrManagerAccessRequired = errors.New("manager access required")
)
