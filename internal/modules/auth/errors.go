package auth

import "errors"

var (
	ErrNotRegistered      = errors.New("user not registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("user inactive")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
)
