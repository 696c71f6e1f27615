package report

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// ReportRepository defines the aggregate reads behind the admin dashboard and export
type ReportRepository interface {
	// GetEmployeeCounts counts employees with role employee, total and active
	GetEmployeeCounts(ctx context.Context) (EmployeeCounts, error)

	// GetDayCounts counts records and late records for one day key
	GetDayCounts(ctx context.Context, dayKey string) (DayCounts, error)

	// CountRecordsBetween counts records in [fromKey, toKey]
	CountRecordsBetween(ctx context.Context, fromKey, toKey string) (int64, error)

	// GetStatusBreakdown groups records in [fromKey, toKey] by status
	GetStatusBreakdown(ctx context.Context, fromKey, toKey string) ([]StatusAggregate, error)

	// GetRecentCheckIns returns the day's records by check-in time, newest first
	GetRecentCheckIns(ctx context.Context, dayKey string, limit int) ([]attendance.Attendance, error)

	// GetDayRecords returns every record of the day
	GetDayRecords(ctx context.Context, dayKey string) ([]attendance.Attendance, error)

	// GetExportRecords returns records joined with employee data, sorted by name then date
	GetExportRecords(ctx context.Context, filter ExportFilter) ([]attendance.Attendance, error)
}
