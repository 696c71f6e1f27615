package employee

import (
	"context"
)

// EmployeeService defines business logic for the employee directory
type EmployeeService interface {
	// CreateEmployee registers a new employee (admin only)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// GetEmployee retrieves a single employee by ID
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// UpdateEmployee applies admin edits, including shift and lifecycle changes
	UpdateEmployee(ctx context.Context, actorID string, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeactivateEmployee soft deletes an employee; attendance history is kept
	DeactivateEmployee(ctx context.Context, actorID string, id string) error

	// ListEmployees lists employees with filters and pagination
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// ListDepartments returns every department in use
	ListDepartments(ctx context.Context) ([]string, error)
}
