package session

import "errors"

var (
	ErrTokenRequired = errors.New("token is required")
	ErrNoSession     = errors.New("no active session")
)
