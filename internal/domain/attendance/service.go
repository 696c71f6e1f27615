package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn records today's arrival for the authenticated employee
	CheckIn(ctx context.Context, principal auth.Principal, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes today's record and computes the day's metrics
	CheckOut(ctx context.Context, principal auth.Principal, req CheckOutRequest) (AttendanceResponse, error)

	// GetToday returns today's record, or nil when there is none
	GetToday(ctx context.Context, principal auth.Principal) (*AttendanceResponse, error)

	// GetMonthly returns a month of records with summary counts
	GetMonthly(ctx context.Context, principal auth.Principal, filter MonthlyFilter) (MonthlyAttendanceResponse, error)

	// GetHistory returns the most recent records, newest first
	GetHistory(ctx context.Context, principal auth.Principal, filter HistoryFilter) ([]AttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// UpdateAttendance corrects a record (admin) and recomputes its metrics
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
}
