package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employee.EmployeeRepository
	employeeService employee.EmployeeService
	jwtService      jwt.Service
}

func NewAuthService(
	employeeRepo employee.EmployeeRepository,
	employeeService employee.EmployeeService,
	jwtService jwt.Service,
) auth.AuthService {
	return &AuthServiceImpl{
		EmployeeRepository: employeeRepo,
		employeeService:    employeeService,
		jwtService:         jwtService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	if !emp.IsActive() {
		return auth.LoginResponse{}, auth.ErrAccountDeactivated
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(emp.ID, emp.EmployeeCode, emp.Email, emp.Role)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.Info("employee logged in", "employee_code", emp.EmployeeCode)

	return auth.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      employee.NewEmployeeResponse(emp),
	}, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return a.employeeService.CreateEmployee(ctx, req)
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, principal auth.Principal) (employee.EmployeeResponse, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, principal auth.Principal, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return err
	}
	if !emp.IsActive() {
		return auth.ErrAccountDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrIncorrectPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.EmployeeRepository.UpdatePassword(ctx, emp.ID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", "employee_code", emp.EmployeeCode)
	return nil
}
