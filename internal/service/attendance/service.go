package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	location       *time.Location
	now            func() time.Time
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now, used by tests and the seeder.
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) {
		s.now = now
	}
}

// NewAttendanceService builds the service. Day keys and shift times are
// interpreted in loc.
func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	loc *time.Location,
	opts ...Option,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	s := &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		location:       loc,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AttendanceServiceImpl) clock() time.Time {
	return s.now().In(s.location)
}

// metrics runs ComputeMetrics with both timestamps in the service zone. Stores
// hand times back in UTC or the host zone, and the shift window is placed in
// the check-in's zone.
func (s *AttendanceServiceImpl) metrics(record attendance.Attendance, checkOut *time.Time) attendance.Metrics {
	in := record.CheckIn.Time.In(s.location)
	if checkOut != nil {
		out := checkOut.In(s.location)
		checkOut = &out
	}
	return ComputeMetrics(in, checkOut, record.Shift)
}

// activeEmployee loads the caller and rejects deactivated accounts.
func (s *AttendanceServiceImpl) activeEmployee(ctx context.Context, principal auth.Principal) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive() {
		return employee.Employee{}, auth.ErrAccountDeactivated
	}
	return emp, nil
}

func snapshotOf(shift employee.Shift) attendance.ShiftSnapshot {
	return attendance.ShiftSnapshot{
		Type:           string(shift.Type),
		ScheduledStart: shift.StartTime,
		ScheduledEnd:   shift.EndTime,
	}
}

func withEmployee(a attendance.Attendance, emp employee.Employee) attendance.Attendance {
	a.EmployeeName = emp.Name
	a.EmployeeDepartment = emp.Department
	a.EmployeeDesignation = emp.Designation
	return a
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, principal auth.Principal, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, principal)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock()
	dayKey := calendar.DayKey(now, s.location)

	existing, err := s.attendanceRepo.GetByEmployeeAndDay(ctx, emp.ID, dayKey)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if existing != nil && existing.HasCheckedIn() {
		return attendance.AttendanceResponse{}, attendance.NewConflictError(attendance.ErrAlreadyCheckedIn, existing.CheckIn.Time.In(s.location))
	}

	record := attendance.Attendance{
		ID:           uuid.Must(uuid.NewV7()).String(),
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		Date:         calendar.StartOfDay(now, s.location),
		DayKey:       dayKey,
		CheckIn: attendance.CheckPoint{
			Time:     &now,
			Location: req.Location,
			Note:     req.Note,
		},
		Shift: snapshotOf(emp.Shift),
	}
	record.ApplyMetrics(ComputeMetrics(now, nil, record.Shift))

	saved, err := s.attendanceRepo.CreateCheckIn(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			// lost the race to a concurrent check-in
			return attendance.AttendanceResponse{}, s.checkInConflict(ctx, emp.ID, dayKey)
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	slog.Info("employee checked in",
		"employee_code", emp.EmployeeCode,
		"day_key", dayKey,
		"status", saved.Status,
		"late_minutes", saved.LateMinutes,
	)

	return attendance.NewAttendanceResponse(withEmployee(saved, emp), s.location), nil
}

func (s *AttendanceServiceImpl) checkInConflict(ctx context.Context, employeeID, dayKey string) error {
	existing, err := s.attendanceRepo.GetByEmployeeAndDay(ctx, employeeID, dayKey)
	if err != nil || existing == nil || !existing.HasCheckedIn() {
		return attendance.ErrAlreadyCheckedIn
	}
	return attendance.NewConflictError(attendance.ErrAlreadyCheckedIn, existing.CheckIn.Time.In(s.location))
}

// openRecord finds the record a checkout applies to: today's, or yesterday's
// still-open record when its shift runs past midnight.
func (s *AttendanceServiceImpl) openRecord(ctx context.Context, employeeID string, now time.Time) (*attendance.Attendance, error) {
	today, err := s.attendanceRepo.GetByEmployeeAndDay(ctx, employeeID, calendar.DayKey(now, s.location))
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if today != nil && today.HasCheckedIn() {
		return today, nil
	}

	prevKey := calendar.DayKey(now.AddDate(0, 0, -1), s.location)
	prev, err := s.attendanceRepo.GetByEmployeeAndDay(ctx, employeeID, prevKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous attendance: %w", err)
	}
	if prev != nil && prev.HasCheckedIn() && !prev.HasCheckedOut() && prev.Shift.IsOvernight() {
		return prev, nil
	}

	return today, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, principal auth.Principal, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, principal)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock()

	record, err := s.openRecord(ctx, emp.ID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if record == nil || !record.HasCheckedIn() {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if record.HasCheckedOut() {
		return attendance.AttendanceResponse{}, attendance.NewConflictError(attendance.ErrAlreadyCheckedOut, record.CheckOut.Time.In(s.location))
	}

	record.CheckOut = attendance.CheckPoint{
		Time:     &now,
		Location: req.Location,
		Note:     req.Note,
	}
	if req.Remarks != "" {
		record.Remarks = req.Remarks
	}
	record.ApplyMetrics(s.metrics(*record, &now))

	saved, err := s.attendanceRepo.RecordCheckOut(ctx, *record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			if latest, getErr := s.attendanceRepo.GetByID(ctx, record.ID); getErr == nil && latest.HasCheckedOut() {
				return attendance.AttendanceResponse{}, attendance.NewConflictError(attendance.ErrAlreadyCheckedOut, latest.CheckOut.Time.In(s.location))
			}
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record checkout: %w", err)
	}

	slog.Info("employee checked out",
		"employee_code", emp.EmployeeCode,
		"day_key", saved.DayKey,
		"status", saved.Status,
		"working_minutes", saved.WorkingMinutes,
	)

	return attendance.NewAttendanceResponse(withEmployee(saved, emp), s.location), nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, principal auth.Principal) (*attendance.AttendanceResponse, error) {
	dayKey := calendar.DayKey(s.clock(), s.location)

	record, err := s.attendanceRepo.GetByEmployeeAndDay(ctx, principal.EmployeeID, dayKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	resp := attendance.NewAttendanceResponse(*record, s.location)
	return &resp, nil
}

// GetMonthly implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthly(ctx context.Context, principal auth.Principal, filter attendance.MonthlyFilter) (attendance.MonthlyAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.MonthlyAttendanceResponse{}, err
	}

	month := calendar.Month(filter.Year, time.Month(filter.Month), s.location)

	records, err := s.attendanceRepo.ListByEmployee(ctx, principal.EmployeeID, month.StartKey, month.EndKey)
	if err != nil {
		return attendance.MonthlyAttendanceResponse{}, fmt.Errorf("failed to list monthly attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.NewAttendanceResponse(r, s.location))
	}

	return attendance.MonthlyAttendanceResponse{
		Year:    filter.Year,
		Month:   filter.Month,
		Records: responses,
		Summary: Summarize(filter.Year, time.Month(filter.Month), records),
	}, nil
}

// Summarize counts a month's records by status. TotalDays is the length of the
// month. Late records count as present too.
func Summarize(year int, month time.Month, records []attendance.Attendance) attendance.MonthlySummary {
	summary := attendance.MonthlySummary{TotalDays: calendar.DaysInMonth(year, month)}
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			summary.Present++
		case attendance.StatusLate:
			summary.Late++
			summary.Present++
		case attendance.StatusHalfDay:
			summary.HalfDay++
		case attendance.StatusAbsent:
			summary.Absent++
		case attendance.StatusOnLeave:
			summary.OnLeave++
		}
		summary.TotalWorkingMinutes += r.WorkingMinutes
		summary.TotalOvertimeMinutes += r.OvertimeMinutes
	}
	summary.TotalWorkingHours = calendar.FormatMinutes(summary.TotalWorkingMinutes)
	return summary
}

// GetHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetHistory(ctx context.Context, principal auth.Principal, filter attendance.HistoryFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListRecentByEmployee(ctx, principal.EmployeeID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.NewAttendanceResponse(r, s.location))
	}
	return responses, nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.NewAttendanceResponse(r, s.location))
	}

	return attendance.ListAttendanceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Records:    responses,
	}, nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.attendanceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.CheckIn != nil {
		t, _ := validator.IsValidDateTime(*req.CheckIn)
		t = t.In(s.location)
		record.CheckIn.Time = &t
	}
	if req.CheckOut != nil {
		t, _ := validator.IsValidDateTime(*req.CheckOut)
		t = t.In(s.location)
		record.CheckOut.Time = &t
	}
	if record.HasCheckedOut() && !record.HasCheckedIn() {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "check_in",
			Message: "check_in is required when check_out is set",
		}}
	}
	if record.HasCheckedIn() && record.HasCheckedOut() && !record.CheckOut.Time.After(*record.CheckIn.Time) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "check_out",
			Message: attendance.ErrCheckOutBeforeCheckIn.Error(),
		}}
	}

	if record.HasCheckedIn() && (req.CheckIn != nil || req.CheckOut != nil) {
		record.ApplyMetrics(s.metrics(record, record.CheckOut.Time))
	}
	if req.Status != nil {
		record.Status = attendance.Status(*req.Status)
	}
	if req.Remarks != nil {
		record.Remarks = *req.Remarks
	}

	saved, err := s.attendanceRepo.Update(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	slog.Info("attendance updated by admin", "attendance_id", saved.ID, "status", saved.Status)

	return attendance.NewAttendanceResponse(saved, s.location), nil
}
