package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultDesignation = "Staff"

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	shifts       employee.ShiftTable
}

// NewEmployeeService builds the directory. shifts supplies the default window
// for each shift type.
func NewEmployeeService(employeeRepo employee.EmployeeRepository, shifts employee.ShiftTable) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		shifts:       shifts,
	}
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	codeTaken, emailTaken, err := s.employeeRepo.ExistsByCodeOrEmail(ctx, req.EmployeeCode, req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee uniqueness: %w", err)
	}
	if emailTaken {
		return employee.EmployeeResponse{}, employee.ErrEmailExists
	}
	if codeTaken {
		return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := employee.RoleEmployee
	if req.Role != "" {
		role = employee.Role(req.Role)
	}

	designation := req.Designation
	if designation == "" {
		designation = defaultDesignation
	}

	shiftType := employee.ShiftMorning
	var start, end string
	if req.Shift != nil {
		if req.Shift.Type != "" {
			shiftType = employee.ShiftType(req.Shift.Type)
		}
		start, end = req.Shift.StartTime, req.Shift.EndTime
	}

	joinDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.JoinDate != "" {
		joinDate, _ = time.Parse("2006-01-02", req.JoinDate)
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		ID:           uuid.Must(uuid.NewV7()).String(),
		EmployeeCode: req.EmployeeCode,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
		Department:   req.Department,
		Designation:  designation,
		Phone:        req.Phone,
		Shift:        s.shifts.Resolve(shiftType, start, end),
		Status:       employee.StatusActive,
		JoinDate:     joinDate,
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmailExists) || errors.Is(err, employee.ErrEmployeeCodeExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("employee registered", "employee_code", created.EmployeeCode, "role", created.Role)

	return employee.NewEmployeeResponse(created), nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, actorID string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.Name != nil {
		emp.Name = strings.TrimSpace(*req.Name)
	}
	if req.Department != nil {
		emp.Department = strings.TrimSpace(*req.Department)
	}
	if req.Designation != nil {
		emp.Designation = strings.TrimSpace(*req.Designation)
		if emp.Designation == "" {
			emp.Designation = defaultDesignation
		}
	}
	if req.Phone != nil {
		emp.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		emp.Role = employee.Role(*req.Role)
	}

	if req.Shift != nil {
		emp.Shift = s.nextShift(emp.Shift, *req.Shift)
	}

	if target := req.TargetStatus(); target != nil && *target != emp.Status {
		if *target == employee.StatusDeactivated && emp.ID == actorID {
			return employee.EmployeeResponse{}, employee.ErrCannotDeactivateSelf
		}
		if err := employee.CanTransition(emp.Status, *target); err != nil {
			return employee.EmployeeResponse{}, err
		}
		emp.Status = *target
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, emp.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(updated), nil
}

// nextShift applies a shift edit. Changing the type without explicit times
// takes the table defaults; keeping the type keeps the current times.
func (s *EmployeeServiceImpl) nextShift(current employee.Shift, req employee.ShiftRequest) employee.Shift {
	shiftType := current.Type
	if req.Type != "" {
		shiftType = employee.ShiftType(req.Type)
	}

	start, end := req.StartTime, req.EndTime
	if shiftType == current.Type {
		if start == "" {
			start = current.StartTime
		}
		if end == "" {
			end = current.EndTime
		}
	}
	return s.shifts.Resolve(shiftType, start, end)
}

// DeactivateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeactivateEmployee(ctx context.Context, actorID string, id string) error {
	if id == actorID {
		return employee.ErrCannotDeactivateSelf
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := employee.CanTransition(emp.Status, employee.StatusDeactivated); err != nil {
		return err
	}

	if err := s.employeeRepo.UpdateStatus(ctx, id, employee.StatusDeactivated); err != nil {
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}

	slog.Info("employee deactivated", "employee_code", emp.EmployeeCode, "by", actorID)
	return nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Employees:  responses,
	}, nil
}

// ListDepartments implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListDepartments(ctx context.Context) ([]string, error) {
	departments, err := s.employeeRepo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}
