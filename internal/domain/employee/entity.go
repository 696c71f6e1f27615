package employee

import (
	"time"
)

type Employee struct {
	ID           string
	EmployeeCode string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Designation  string
	Phone        string
	Shift        Shift
	Status       LifecycleStatus
	JoinDate     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the employee may sign in and record attendance.
func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

func (e Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

type ShiftType string

const (
	ShiftMorning   ShiftType = "morning"
	ShiftAfternoon ShiftType = "afternoon"
	ShiftNight     ShiftType = "night"
	ShiftFlexible  ShiftType = "flexible"
)

var ShiftTypes = []string{
	string(ShiftMorning),
	string(ShiftAfternoon),
	string(ShiftNight),
	string(ShiftFlexible),
}

func (s ShiftType) IsValid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight, ShiftFlexible:
		return true
	}
	return false
}

// Shift is the employee's assigned working window in HH:MM wall-clock time.
type Shift struct {
	Type      ShiftType
	StartTime string
	EndTime   string
}

// ShiftWindow is a default start/end pair for a shift type.
type ShiftWindow struct {
	StartTime string
	EndTime   string
}

// ShiftTable maps each shift type to its default window. It is passed into the
// directory at construction so the defaults live in one place.
type ShiftTable map[ShiftType]ShiftWindow

// Resolve fills in missing start/end times from the table.
func (t ShiftTable) Resolve(shiftType ShiftType, start, end string) Shift {
	s := Shift{Type: shiftType, StartTime: start, EndTime: end}
	if w, ok := t[shiftType]; ok {
		if s.StartTime == "" {
			s.StartTime = w.StartTime
		}
		if s.EndTime == "" {
			s.EndTime = w.EndTime
		}
	}
	return s
}
