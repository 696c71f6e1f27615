package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Register(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	Me(ctx context.Context, principal Principal) (employee.EmployeeResponse, error)
	ChangePassword(ctx context.Context, principal Principal, req ChangePasswordRequest) error
}
