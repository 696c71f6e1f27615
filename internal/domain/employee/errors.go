package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmployeeCodeExists      = errors.New("employee code already exists")
	ErrEmailExists             = errors.New("email already registered")
	ErrInvalidEmployeeCode     = errors.New("invalid employee code format")
	ErrInvalidPhoneNumber      = errors.New("invalid phone number")
	ErrInvalidLifecycleStatus  = errors.New("status must be active or deactivated")
	ErrEmployeeAlreadyActive   = errors.New("employee is already active")
	ErrEmployeeAlreadyInactive = errors.New("employee is already inactive")
	ErrCannotDeactivateSelf    = errors.New("cannot deactivate your own account")
)
