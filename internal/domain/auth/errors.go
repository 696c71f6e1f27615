package auth

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountDeactivated     = errors.New("account deactivated, contact admin")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrIncorrectPassword      = errors.New("current password is incorrect")
)
