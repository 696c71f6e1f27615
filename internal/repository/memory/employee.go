package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.employees {
		if e.Email == newEmployee.Email {
			return employee.Employee{}, employee.ErrEmailExists
		}
		if e.EmployeeCode == newEmployee.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
	}

	now := time.Now().UTC()
	newEmployee.CreatedAt = now
	newEmployee.UpdatedAt = now
	r.store.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByEmail implements employee.EmployeeRepository.
func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (r *employeeRepository) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.employees {
		if e.EmployeeCode == employeeCode {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// ExistsByCodeOrEmail implements employee.EmployeeRepository.
func (r *employeeRepository) ExistsByCodeOrEmail(ctx context.Context, employeeCode, email string) (bool, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var codeTaken, emailTaken bool
	for _, e := range r.store.employees {
		if e.EmployeeCode == employeeCode {
			codeTaken = true
		}
		if e.Email == email {
			emailTaken = true
		}
	}
	return codeTaken, emailTaken, nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.employees[e.ID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}

	current.Name = e.Name
	current.Department = e.Department
	current.Designation = e.Designation
	current.Phone = e.Phone
	current.Role = e.Role
	current.Shift = e.Shift
	current.Status = e.Status
	current.UpdatedAt = time.Now().UTC()
	r.store.employees[e.ID] = current
	return nil
}

// UpdatePassword implements employee.EmployeeRepository.
func (r *employeeRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	current.PasswordHash = passwordHash
	current.UpdatedAt = time.Now().UTC()
	r.store.employees[id] = current
	return nil
}

// UpdateStatus implements employee.EmployeeRepository.
func (r *employeeRepository) UpdateStatus(ctx context.Context, id string, status employee.LifecycleStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	current.Status = status
	current.UpdatedAt = time.Now().UTC()
	r.store.employees[id] = current
	return nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []employee.Employee
	for _, e := range r.store.employees {
		if filter.Department != nil && *filter.Department != "" && !containsFold(e.Department, *filter.Department) {
			continue
		}
		if filter.Status != nil {
			if *filter.Status == "active" && !e.IsActive() {
				continue
			}
			if *filter.Status == "inactive" && e.IsActive() {
				continue
			}
		}
		if filter.Search != nil && *filter.Search != "" {
			q := strings.TrimSpace(*filter.Search)
			if !containsFold(e.Name, q) && !containsFold(e.EmployeeCode, q) && !containsFold(e.Email, q) {
				continue
			}
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(ctx context.Context, role employee.Role) ([]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var active []employee.Employee
	for _, e := range r.store.employees {
		if e.IsActive() && e.Role == role {
			active = append(active, e)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Name < active[j].Name })
	return active, nil
}

// ListDepartments implements employee.EmployeeRepository.
func (r *employeeRepository) ListDepartments(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	departments := []string{}
	for _, e := range r.store.employees {
		if _, ok := seen[e.Department]; ok || e.Department == "" {
			continue
		}
		seen[e.Department] = struct{}{}
		departments = append(departments, e.Department)
	}
	sort.Strings(departments)
	return departments, nil
}
