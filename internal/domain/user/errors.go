package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserInactive          = errors.New("user account is inactive")
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrInvalidRole           = errors.New("invalid role")
)
