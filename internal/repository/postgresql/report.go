package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// GetEmployeeCounts implements report.ReportRepository.
func (r *reportRepositoryImpl) GetEmployeeCounts(ctx context.Context) (report.EmployeeCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM employees
		WHERE role = $1
	`

	var counts report.EmployeeCounts
	if err := q.QueryRow(ctx, query, employee.RoleEmployee, employee.StatusActive).Scan(&counts.Total, &counts.Active); err != nil {
		return report.EmployeeCounts{}, fmt.Errorf("failed to count employees: %w", err)
	}
	return counts, nil
}

// GetDayCounts implements report.ReportRepository.
func (r *reportRepositoryImpl) GetDayCounts(ctx context.Context, dayKey string) (report.DayCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_late)
		FROM attendances
		WHERE day_key = $1
	`

	var counts report.DayCounts
	if err := q.QueryRow(ctx, query, dayKey).Scan(&counts.Records, &counts.Late); err != nil {
		return report.DayCounts{}, fmt.Errorf("failed to count day records: %w", err)
	}
	return counts, nil
}

// CountRecordsBetween implements report.ReportRepository.
func (r *reportRepositoryImpl) CountRecordsBetween(ctx context.Context, fromKey, toKey string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances WHERE day_key BETWEEN $1 AND $2`, fromKey, toKey).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// GetStatusBreakdown implements report.ReportRepository.
func (r *reportRepositoryImpl) GetStatusBreakdown(ctx context.Context, fromKey, toKey string) ([]report.StatusAggregate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COUNT(*), COALESCE(AVG(working_minutes), 0)::float8
		FROM attendances
		WHERE day_key BETWEEN $1 AND $2
		GROUP BY status
		ORDER BY status
	`

	rows, err := q.Query(ctx, query, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}
	defer rows.Close()

	stats := []report.StatusAggregate{}
	for rows.Next() {
		var s report.StatusAggregate
		if err := rows.Scan(&s.Status, &s.Count, &s.AvgWorkingMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan status breakdown: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetRecentCheckIns implements report.ReportRepository.
func (r *reportRepositoryImpl) GetRecentCheckIns(ctx context.Context, dayKey string, limit int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := attendanceSelect + `
		WHERE a.day_key = $1 AND a.check_in_time IS NOT NULL
		ORDER BY a.check_in_time DESC
		LIMIT $2`

	records, err := queryAttendances(ctx, q, query, dayKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent check-ins: %w", err)
	}
	return records, nil
}

// GetDayRecords implements report.ReportRepository.
func (r *reportRepositoryImpl) GetDayRecords(ctx context.Context, dayKey string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	records, err := queryAttendances(ctx, q, attendanceSelect+" WHERE a.day_key = $1", dayKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get day records: %w", err)
	}
	return records, nil
}

// GetExportRecords implements report.ReportRepository.
func (r *reportRepositoryImpl) GetExportRecords(ctx context.Context, filter report.ExportFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"a.day_key BETWEEN $1 AND $2"}
	args := []interface{}{filter.FromKey, filter.ToKey}
	argIdx := 3

	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department ILIKE $%d ESCAPE '\\'", argIdx))
		args = append(args, containsPattern(*filter.Department))
		argIdx++
	}
	if filter.EmployeeCode != nil && *filter.EmployeeCode != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_code = $%d", argIdx))
		args = append(args, *filter.EmployeeCode)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY e.name ASC, a.day_key ASC`, attendanceSelect, strings.Join(conditions, " AND "))

	records, err := queryAttendances(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get export records: %w", err)
	}
	return records, nil
}
