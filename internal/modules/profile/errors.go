package profile

import "errors"

var (
	ErrNotFound      = errors.New("profile image not found")
	ErrAlreadyExists = errors.New("profile image already exists for this user")
)
