package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
	e.id, e.employee_code, e.name, e.email, e.password_hash, e.role,
	e.department, e.designation, e.phone, e.shift_type, e.shift_start, e.shift_end,
	e.status, e.join_date, e.created_at, e.updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.Name, &emp.Email, &emp.PasswordHash, &emp.Role,
		&emp.Department, &emp.Designation, &emp.Phone, &emp.Shift.Type, &emp.Shift.StartTime, &emp.Shift.EndTime,
		&emp.Status, &emp.JoinDate, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := fmt.Sprintf("SELECT %s FROM employees e WHERE %s", employeeColumns, where)
	emp, err := scanEmployee(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (
			id, employee_code, name, email, password_hash, role,
			department, designation, phone, shift_type, shift_start, shift_end,
			status, join_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newEmployee.ID,
		newEmployee.EmployeeCode,
		newEmployee.Name,
		newEmployee.Email,
		newEmployee.PasswordHash,
		newEmployee.Role,
		newEmployee.Department,
		newEmployee.Designation,
		newEmployee.Phone,
		newEmployee.Shift.Type,
		newEmployee.Shift.StartTime,
		newEmployee.Shift.EndTime,
		newEmployee.Status,
		newEmployee.JoinDate,
	).Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		switch uniqueConstraint(err) {
		case "employees_employee_code_key":
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		case "employees_email_key":
			return employee.Employee{}, employee.ErrEmailExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return newEmployee, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.getOne(ctx, "e.id = $1", id)
}

// GetByEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return e.getOne(ctx, "e.email = $1", email)
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	return e.getOne(ctx, "e.employee_code = $1", employeeCode)
}

// ExistsByCodeOrEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ExistsByCodeOrEmail(ctx context.Context, employeeCode, email string) (bool, bool, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT
			EXISTS (SELECT 1 FROM employees WHERE employee_code = $1),
			EXISTS (SELECT 1 FROM employees WHERE email = $2)
	`

	var codeTaken, emailTaken bool
	if err := q.QueryRow(ctx, query, employeeCode, email).Scan(&codeTaken, &emailTaken); err != nil {
		return false, false, fmt.Errorf("failed to check employee existence: %w", err)
	}
	return codeTaken, emailTaken, nil
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET name = $2, department = $3, designation = $4, phone = $5, role = $6,
			shift_type = $7, shift_start = $8, shift_end = $9, status = $10,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		emp.ID, emp.Name, emp.Department, emp.Designation, emp.Phone, emp.Role,
		emp.Shift.Type, emp.Shift.StartTime, emp.Shift.EndTime, emp.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// UpdatePassword implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// UpdateStatus implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateStatus(ctx context.Context, id string, status employee.LifecycleStatus) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update employee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	// Build WHERE conditions
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department ILIKE $%d ESCAPE '\\'", argIdx))
		args = append(args, containsPattern(*filter.Department))
		argIdx++
	}
	if filter.Status != nil {
		switch *filter.Status {
		case "active":
			conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIdx))
			args = append(args, employee.StatusActive)
			argIdx++
		case "inactive":
			conditions = append(conditions, fmt.Sprintf("e.status <> $%d", argIdx))
			args = append(args, employee.StatusActive)
			argIdx++
		}
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf("(e.name ILIKE $%[1]d ESCAPE '\\' OR e.employee_code ILIKE $%[1]d ESCAPE '\\' OR e.email ILIKE $%[1]d ESCAPE '\\')", argIdx))
		args = append(args, containsPattern(strings.TrimSpace(*filter.Search)))
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees e WHERE %s", whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	// Main query with pagination
	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM employees e
		WHERE %s
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context, role employee.Role) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees e
		WHERE e.status = $1 AND e.role = $2
		ORDER BY e.name ASC
	`, employeeColumns)

	rows, err := q.Query(ctx, query, employee.StatusActive, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

// ListDepartments implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListDepartments(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT department FROM employees WHERE department <> '' ORDER BY department`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}

	return departments, rows.Err()
}
