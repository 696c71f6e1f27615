package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// EMPLOYEE DTOs
// ========================================

type ShiftRequest struct {
	Type      string `json:"type"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

func (s *ShiftRequest) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if s.Type != "" && !ShiftType(s.Type).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "shift.type",
			Message: "shift type must be one of: " + strings.Join(ShiftTypes, ", "),
		})
	}
	if s.StartTime != "" && !validator.IsValidClock(s.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift.start_time",
			Message: "start_time must be in HH:MM format",
		})
	}
	if s.EndTime != "" && !validator.IsValidClock(s.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift.end_time",
			Message: "end_time must be in HH:MM format",
		})
	}
	return errs
}

type CreateEmployeeRequest struct {
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Password     string        `json:"password"`
	EmployeeCode string        `json:"employee_id"`
	Department   string        `json:"department"`
	Designation  string        `json:"designation,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Role         string        `json:"role,omitempty"`
	Shift        *ShiftRequest `json:"shift,omitempty"`
	JoinDate     string        `json:"join_date,omitempty"`
}

// Normalize trims input and applies the canonical casing for identifiers.
func (r *CreateEmployeeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.EmployeeCode = strings.ToUpper(strings.TrimSpace(r.EmployeeCode))
	r.Department = strings.TrimSpace(r.Department)
	r.Designation = strings.TrimSpace(r.Designation)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Name) < 2 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must be at least 2 characters",
		})
	}

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if len(r.Password) < 6 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: ErrInvalidEmployeeCode.Error(),
		})
	}

	if validator.IsEmpty(r.Department) {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "department is required",
		})
	}

	if r.Phone != "" && !validator.IsValidPhoneNumber(r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: ErrInvalidPhoneNumber.Error(),
		})
	}

	if r.Role != "" && !Role(r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, admin",
		})
	}

	if r.Shift != nil {
		errs = r.Shift.validate(errs)
	}

	if r.JoinDate != "" {
		if _, ok := validator.IsValidDate(r.JoinDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "join_date",
				Message: "join_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest carries the admin-editable fields. Nil means unchanged.
type UpdateEmployeeRequest struct {
	ID          string        `json:"-"`
	Name        *string       `json:"name,omitempty"`
	Department  *string       `json:"department,omitempty"`
	Designation *string       `json:"designation,omitempty"`
	Phone       *string       `json:"phone,omitempty"`
	Role        *string       `json:"role,omitempty"`
	Shift       *ShiftRequest `json:"shift,omitempty"`
	Status      *string       `json:"status,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil && len(strings.TrimSpace(*r.Name)) < 2 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must be at least 2 characters",
		})
	}

	if r.Department != nil && validator.IsEmpty(*r.Department) {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "department cannot be empty",
		})
	}

	if r.Phone != nil && *r.Phone != "" && !validator.IsValidPhoneNumber(*r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: ErrInvalidPhoneNumber.Error(),
		})
	}

	if r.Role != nil && !Role(*r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, admin",
		})
	}

	if r.Shift != nil {
		errs = r.Shift.validate(errs)
	}

	if r.Status != nil && !LifecycleStatus(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: ErrInvalidLifecycleStatus.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TargetStatus resolves the requested lifecycle status, accepting either the
// status enum or the is_active flag older clients send.
func (r *UpdateEmployeeRequest) TargetStatus() *LifecycleStatus {
	if r.Status != nil {
		s := LifecycleStatus(*r.Status)
		return &s
	}
	if r.IsActive != nil {
		s := StatusDeactivated
		if *r.IsActive {
			s = StatusActive
		}
		return &s
	}
	return nil
}

type EmployeeFilter struct {
	Department *string `json:"department,omitempty"`
	Status     *string `json:"status,omitempty"` // active, inactive
	Search     *string `json:"search,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{"active", "inactive"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: active, inactive",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftResponse struct {
	Type      string `json:"type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type EmployeeResponse struct {
	ID           string        `json:"id"`
	EmployeeCode string        `json:"employee_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         string        `json:"role"`
	Department   string        `json:"department"`
	Designation  string        `json:"designation"`
	Phone        string        `json:"phone,omitempty"`
	Shift        ShiftResponse `json:"shift"`
	Status       string        `json:"status"`
	IsActive     bool          `json:"is_active"`
	JoinDate     string        `json:"join_date"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		Name:         e.Name,
		Email:        e.Email,
		Role:         string(e.Role),
		Department:   e.Department,
		Designation:  e.Designation,
		Phone:        e.Phone,
		Shift: ShiftResponse{
			Type:      string(e.Shift.Type),
			StartTime: e.Shift.StartTime,
			EndTime:   e.Shift.EndTime,
		},
		Status:    string(e.Status),
		IsActive:  e.IsActive(),
		JoinDate:  e.JoinDate.Format("2006-01-02"),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
