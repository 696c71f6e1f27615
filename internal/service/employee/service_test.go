package employee

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (employee.EmployeeService, employee.EmployeeRepository) {
	repo := memory.NewEmployeeRepository(memory.NewStore())
	return NewEmployeeService(repo, fixtures.DefaultShiftTable()), repo
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Name:         "John Doe",
		Email:        "John@Company.com",
		Password:     "password123",
		EmployeeCode: "emp001",
		Department:   "Engineering",
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateEmployee_Defaults(t *testing.T) {
	svc, repo := newTestService()

	resp, err := svc.CreateEmployee(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "EMP001", resp.EmployeeCode)
	assert.Equal(t, "john@company.com", resp.Email)
	assert.Equal(t, string(employee.RoleEmployee), resp.Role)
	assert.Equal(t, "Staff", resp.Designation)
	assert.Equal(t, "morning", resp.Shift.Type)
	assert.Equal(t, "09:00", resp.Shift.StartTime)
	assert.Equal(t, "18:00", resp.Shift.EndTime)
	assert.True(t, resp.IsActive)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestCreateEmployee_ShiftTypeTakesDefaults(t *testing.T) {
	svc, _ := newTestService()

	req := validCreateRequest()
	req.Shift = &employee.ShiftRequest{Type: "night"}
	resp, err := svc.CreateEmployee(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "22:00", resp.Shift.StartTime)
	assert.Equal(t, "07:00", resp.Shift.EndTime)
}

func TestCreateEmployee_Duplicates(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateEmployee(context.Background(), validCreateRequest())
	require.NoError(t, err)

	sameEmail := validCreateRequest()
	sameEmail.EmployeeCode = "EMP002"
	_, err = svc.CreateEmployee(context.Background(), sameEmail)
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	sameCode := validCreateRequest()
	sameCode.Email = "other@company.com"
	_, err = svc.CreateEmployee(context.Background(), sameCode)
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
}

func TestCreateEmployee_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(r *employee.CreateEmployeeRequest)
		field  string
	}{
		{"short name", func(r *employee.CreateEmployeeRequest) { r.Name = "J" }, "name"},
		{"bad email", func(r *employee.CreateEmployeeRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *employee.CreateEmployeeRequest) { r.Password = "123" }, "password"},
		{"missing department", func(r *employee.CreateEmployeeRequest) { r.Department = " " }, "department"},
		{"bad phone", func(r *employee.CreateEmployeeRequest) { r.Phone = "12ab" }, "phone"},
		{"bad role", func(r *employee.CreateEmployeeRequest) { r.Role = "root" }, "role"},
		{"bad shift", func(r *employee.CreateEmployeeRequest) { r.Shift = &employee.ShiftRequest{Type: "evening"} }, "shift.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)

			_, err := svc.CreateEmployee(context.Background(), req)
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
}

func TestUpdateEmployee_ShiftAndProfile(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.CreateEmployee(context.Background(), validCreateRequest())
	require.NoError(t, err)

	resp, err := svc.UpdateEmployee(context.Background(), "admin-1", employee.UpdateEmployeeRequest{
		ID:          created.ID,
		Designation: strPtr("Lead Engineer"),
		Shift:       &employee.ShiftRequest{StartTime: "08:30"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lead Engineer", resp.Designation)
	assert.Equal(t, "08:30", resp.Shift.StartTime)
	assert.Equal(t, "18:00", resp.Shift.EndTime)

	resp, err = svc.UpdateEmployee(context.Background(), "admin-1", employee.UpdateEmployeeRequest{
		ID:    created.ID,
		Shift: &employee.ShiftRequest{Type: "afternoon"},
	})
	require.NoError(t, err)
	assert.Equal(t, "13:00", resp.Shift.StartTime)
	assert.Equal(t, "22:00", resp.Shift.EndTime)
}

func TestUpdateEmployee_Lifecycle(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.CreateEmployee(context.Background(), validCreateRequest())
	require.NoError(t, err)

	resp, err := svc.UpdateEmployee(context.Background(), "admin-1", employee.UpdateEmployeeRequest{ID: created.ID, IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, string(employee.StatusDeactivated), resp.Status)

	resp, err = svc.UpdateEmployee(context.Background(), "admin-1", employee.UpdateEmployeeRequest{ID: created.ID, Status: strPtr("active")})
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	_, err = svc.UpdateEmployee(context.Background(), created.ID, employee.UpdateEmployeeRequest{ID: created.ID, IsActive: boolPtr(false)})
	assert.ErrorIs(t, err, employee.ErrCannotDeactivateSelf)

	_, err = svc.UpdateEmployee(context.Background(), "admin-1", employee.UpdateEmployeeRequest{ID: "missing", Name: strPtr("X Y")})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeactivateEmployee(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.CreateEmployee(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeactivateEmployee(context.Background(), created.ID, created.ID), employee.ErrCannotDeactivateSelf)

	require.NoError(t, svc.DeactivateEmployee(context.Background(), "admin-1", created.ID))
	assert.ErrorIs(t, svc.DeactivateEmployee(context.Background(), "admin-1", created.ID), employee.ErrEmployeeAlreadyInactive)

	resp, err := svc.GetEmployee(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(employee.StatusDeactivated), resp.Status)
}

func TestListEmployeesAndDepartments(t *testing.T) {
	svc, _ := newTestService()

	for _, r := range []struct{ code, email, dept string }{
		{"EMP001", "a@company.com", "Engineering"},
		{"EMP002", "b@company.com", "Marketing"},
		{"EMP003", "c@company.com", "Engineering"},
	} {
		req := validCreateRequest()
		req.EmployeeCode, req.Email, req.Department = r.code, r.email, r.dept
		_, err := svc.CreateEmployee(context.Background(), req)
		require.NoError(t, err)
	}

	resp, err := svc.ListEmployees(context.Background(), employee.EmployeeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)
	assert.Len(t, resp.Employees, 2)

	departments, err := svc.ListDepartments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Marketing"}, departments)
}
