package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance records.
// Every implementation enforces at most one record per (employee, day key).
type AttendanceRepository interface {
	// CreateCheckIn stores the day's check-in. It inserts a new record, or fills
	// an existing record for the same day that has no check-in yet (for example
	// one an admin pre-created as on-leave). Returns ErrAlreadyCheckedIn when the
	// day already carries a check-in; concurrent callers race on the store's
	// uniqueness constraint and exactly one wins.
	CreateCheckIn(ctx context.Context, a Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID with the employee's name and department
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDay returns nil, nil when no record exists
	GetByEmployeeAndDay(ctx context.Context, employeeID string, dayKey string) (*Attendance, error)

	// RecordCheckOut writes checkout fields and metrics only if checkout is
	// still empty; otherwise ErrAlreadyCheckedOut.
	RecordCheckOut(ctx context.Context, a Attendance) (Attendance, error)

	// Update overwrites an existing record (admin corrections)
	Update(ctx context.Context, a Attendance) (Attendance, error)

	// ListByEmployee returns an employee's records in [fromKey, toKey], oldest first
	ListByEmployee(ctx context.Context, employeeID string, fromKey, toKey string) ([]Attendance, error)

	// ListRecentByEmployee returns the newest records first
	ListRecentByEmployee(ctx context.Context, employeeID string, limit int) ([]Attendance, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}
