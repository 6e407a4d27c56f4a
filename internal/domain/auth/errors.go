package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid employee id or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrSessionInvalid     = errors.New("stored session is no longer valid")
)
