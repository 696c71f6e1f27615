package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// attendanceSelect joins the owning employee for name, department and designation.
const attendanceSelect = `
	SELECT a.id, a.employee_id, a.employee_code, a.date, a.day_key,
		   a.check_in_time, a.check_in_location, a.check_in_note,
		   a.check_out_time, a.check_out_location, a.check_out_note,
		   a.status, a.shift_type, a.scheduled_start, a.scheduled_end,
		   a.working_minutes, a.overtime_minutes, a.is_late, a.late_minutes,
		   a.early_leave, a.early_leave_minutes, a.remarks, a.created_at, a.updated_at,
		   COALESCE(e.name, ''), COALESCE(e.department, ''), COALESCE(e.designation, '')
	FROM attendances a
	LEFT JOIN employees e ON e.id = a.employee_id`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.EmployeeCode, &att.Date, &att.DayKey,
		&att.CheckIn.Time, &att.CheckIn.Location, &att.CheckIn.Note,
		&att.CheckOut.Time, &att.CheckOut.Location, &att.CheckOut.Note,
		&att.Status, &att.Shift.Type, &att.Shift.ScheduledStart, &att.Shift.ScheduledEnd,
		&att.WorkingMinutes, &att.OvertimeMinutes, &att.IsLate, &att.LateMinutes,
		&att.EarlyLeave, &att.EarlyLeaveMinutes, &att.Remarks, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeeDepartment, &att.EmployeeDesignation,
	)
	return att, err
}

func queryAttendances(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.Attendance, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []attendance.Attendance{}
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, rows.Err()
}

// CreateCheckIn implements attendance.AttendanceRepository.
// The upsert only fills a same-day row that has no check-in yet; a row with a
// check-in makes the statement return nothing.
func (r *attendanceRepository) CreateCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, employee_code, date, day_key,
			check_in_time, check_in_location, check_in_note,
			status, shift_type, scheduled_start, scheduled_end,
			working_minutes, overtime_minutes, is_late, late_minutes,
			early_leave, early_leave_minutes, remarks
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		ON CONFLICT ON CONSTRAINT attendances_employee_day_key DO UPDATE SET
			check_in_time = EXCLUDED.check_in_time,
			check_in_location = EXCLUDED.check_in_location,
			check_in_note = EXCLUDED.check_in_note,
			check_out_time = NULL,
			check_out_location = '',
			check_out_note = '',
			status = EXCLUDED.status,
			shift_type = EXCLUDED.shift_type,
			scheduled_start = EXCLUDED.scheduled_start,
			scheduled_end = EXCLUDED.scheduled_end,
			working_minutes = EXCLUDED.working_minutes,
			overtime_minutes = EXCLUDED.overtime_minutes,
			is_late = EXCLUDED.is_late,
			late_minutes = EXCLUDED.late_minutes,
			early_leave = EXCLUDED.early_leave,
			early_leave_minutes = EXCLUDED.early_leave_minutes,
			remarks = CASE WHEN EXCLUDED.remarks = '' THEN attendances.remarks ELSE EXCLUDED.remarks END,
			updated_at = NOW()
		WHERE attendances.check_in_time IS NULL
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		a.ID, a.EmployeeID, a.EmployeeCode, a.Date, a.DayKey,
		a.CheckIn.Time, a.CheckIn.Location, a.CheckIn.Note,
		a.Status, a.Shift.Type, a.Shift.ScheduledStart, a.Shift.ScheduledEnd,
		a.WorkingMinutes, a.OvertimeMinutes, a.IsLate, a.LateMinutes,
		a.EarlyLeave, a.EarlyLeaveMinutes, a.Remarks,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || uniqueConstraint(err) == "attendances_employee_day_key" {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create check-in: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	att, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+" WHERE a.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDay(ctx context.Context, employeeID string, dayKey string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	att, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+" WHERE a.employee_id = $1 AND a.day_key = $2", employeeID, dayKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by day: %w", err)
	}
	return &att, nil
}

// RecordCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) RecordCheckOut(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_out_time = $2, check_out_location = $3, check_out_note = $4,
			working_minutes = $5, overtime_minutes = $6, is_late = $7, late_minutes = $8,
			early_leave = $9, early_leave_minutes = $10, status = $11, remarks = $12,
			updated_at = NOW()
		WHERE id = $1 AND check_in_time IS NOT NULL AND check_out_time IS NULL
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		a.ID, a.CheckOut.Time, a.CheckOut.Location, a.CheckOut.Note,
		a.WorkingMinutes, a.OvertimeMinutes, a.IsLate, a.LateMinutes,
		a.EarlyLeave, a.EarlyLeaveMinutes, a.Status, a.Remarks,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, fmt.Errorf("failed to record check-out: %w", err)
		}
		current, getErr := r.GetByID(ctx, a.ID)
		if getErr != nil {
			return attendance.Attendance{}, getErr
		}
		if !current.HasCheckedIn() {
			return attendance.Attendance{}, attendance.ErrNotCheckedIn
		}
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	return a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_in_time = $2, check_in_location = $3, check_in_note = $4,
			check_out_time = $5, check_out_location = $6, check_out_note = $7,
			status = $8, working_minutes = $9, overtime_minutes = $10,
			is_late = $11, late_minutes = $12, early_leave = $13, early_leave_minutes = $14,
			remarks = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		a.ID,
		a.CheckIn.Time, a.CheckIn.Location, a.CheckIn.Note,
		a.CheckOut.Time, a.CheckOut.Location, a.CheckOut.Note,
		a.Status, a.WorkingMinutes, a.OvertimeMinutes,
		a.IsLate, a.LateMinutes, a.EarlyLeave, a.EarlyLeaveMinutes,
		a.Remarks,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return a, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, fromKey, toKey string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := attendanceSelect + `
		WHERE a.employee_id = $1 AND a.day_key BETWEEN $2 AND $3
		ORDER BY a.day_key ASC`

	records, err := queryAttendances(ctx, q, query, employeeID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee attendance: %w", err)
	}
	return records, nil
}

// ListRecentByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListRecentByEmployee(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := attendanceSelect + `
		WHERE a.employee_id = $1
		ORDER BY a.day_key DESC, a.check_in_time DESC NULLS LAST
		LIMIT $2`

	records, err := queryAttendances(ctx, q, query, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	return records, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE conditions
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if from, to, ok := filter.DayRange(); ok {
		conditions = append(conditions, fmt.Sprintf("a.day_key BETWEEN $%d AND $%d", argIdx, argIdx+1))
		args = append(args, from, to)
		argIdx += 2
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeCode != nil && *filter.EmployeeCode != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_code = $%d", argIdx))
		args = append(args, *filter.EmployeeCode)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department ILIKE $%d ESCAPE '\\'", argIdx))
		args = append(args, containsPattern(*filter.Department))
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE %s`, whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	// Main query with pagination
	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY a.day_key DESC, a.check_in_time DESC NULLS LAST
		LIMIT $%d OFFSET $%d`, attendanceSelect, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	records, err := queryAttendances(ctx, q, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}

	return records, total, nil
}
