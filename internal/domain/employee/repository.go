package employee

import "context"

// EmployeeRepository is the persistence port of the employee directory.
// Uniqueness of employee code and email is enforced by the store; Create
// returns ErrEmployeeCodeExists or ErrEmailExists when a constraint fires.
type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	GetByEmployeeCode(ctx context.Context, employeeCode string) (Employee, error)

	// ExistsByCodeOrEmail reports which of the two identifiers is already taken.
	ExistsByCodeOrEmail(ctx context.Context, employeeCode, email string) (codeTaken bool, emailTaken bool, err error)

	Update(ctx context.Context, e Employee) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateStatus(ctx context.Context, id string, status LifecycleStatus) error

	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)

	// ListActive returns active employees with the given role, ordered by name.
	ListActive(ctx context.Context, role Role) ([]Employee, error)

	// ListDepartments returns the distinct department names, sorted.
	ListDepartments(ctx context.Context) ([]string, error)
}
