package auth

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessExp = "1h"
	testSecret    = "test-secret-key-for-jwt"
	testPassword  = "password123"
)

type authFixture struct {
	service    auth.AuthService
	repo       employee.EmployeeRepository
	jwtService jwt.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := memory.NewEmployeeRepository(memory.NewStore())
	jwtService := jwt.NewJWTService(testSecret, testAccessExp)
	return &authFixture{
		service:    NewAuthService(repo, employeeService.NewEmployeeService(repo, fixtures.DefaultShiftTable()), jwtService),
		repo:       repo,
		jwtService: jwtService,
	}
}

func (f *authFixture) register(t *testing.T, code, email string) employee.EmployeeResponse {
	t.Helper()
	resp, err := f.service.Register(context.Background(), employee.CreateEmployeeRequest{
		Name:         "John Doe",
		Email:        email,
		Password:     testPassword,
		EmployeeCode: code,
		Department:   "Engineering",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "EMP001", "john@company.com")

	// Act
	resp, err := f.service.Login(context.Background(), auth.LoginRequest{Email: " John@Company.com ", Password: testPassword})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Greater(t, resp.ExpiresAt, int64(0))
	assert.Equal(t, registered.ID, resp.User.ID)

	token, err := f.jwtService.JWTAuth().Decode(resp.Token)
	require.NoError(t, err)
	claims, err := token.AsMap(t.Context())
	require.NoError(t, err)

	principal, err := f.jwtService.PrincipalFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.EmployeeID)
	assert.Equal(t, "EMP001", principal.EmployeeCode)
	assert.Equal(t, employee.RoleEmployee, principal.Role)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "EMP001", "john@company.com")

	_, err := f.service.Login(context.Background(), auth.LoginRequest{Email: "john@company.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.service.Login(context.Background(), auth.LoginRequest{Email: "nobody@company.com", Password: testPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "EMP001", "john@company.com")
	require.NoError(t, f.repo.UpdateStatus(context.Background(), registered.ID, employee.StatusDeactivated))

	_, err := f.service.Login(context.Background(), auth.LoginRequest{Email: "john@company.com", Password: testPassword})
	assert.ErrorIs(t, err, auth.ErrAccountDeactivated)

	// A wrong password still reads as bad credentials.
	_, err = f.service.Login(context.Background(), auth.LoginRequest{Email: "john@company.com", Password: "nope"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "EMP001", "john@company.com")

	_, err := f.service.Register(context.Background(), employee.CreateEmployeeRequest{
		Name:         "Johnny",
		Email:        "john@company.com",
		Password:     testPassword,
		EmployeeCode: "EMP002",
		Department:   "Engineering",
	})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "EMP001", "john@company.com")

	me, err := f.service.Me(context.Background(), auth.Principal{EmployeeID: registered.ID})
	require.NoError(t, err)
	assert.Equal(t, "EMP001", me.EmployeeCode)

	_, err = f.service.Me(context.Background(), auth.Principal{EmployeeID: "missing"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "EMP001", "john@company.com")
	principal := auth.Principal{EmployeeID: registered.ID}

	err := f.service.ChangePassword(context.Background(), principal, auth.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpass123"})
	assert.ErrorIs(t, err, auth.ErrIncorrectPassword)

	err = f.service.ChangePassword(context.Background(), principal, auth.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "newpass123"})
	require.NoError(t, err)

	_, err = f.service.Login(context.Background(), auth.LoginRequest{Email: "john@company.com", Password: testPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.service.Login(context.Background(), auth.LoginRequest{Email: "john@company.com", Password: "newpass123"})
	assert.NoError(t, err)
}
