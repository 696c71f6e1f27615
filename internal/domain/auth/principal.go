package auth

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

// Principal is the authenticated caller, built from verified token claims.
type Principal struct {
	EmployeeID   string
	EmployeeCode string
	Email        string
	Role         employee.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == employee.RoleAdmin
}
