package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

const defaultLocation = "Office"

type CheckInRequest struct {
	Location string `json:"location"`
	Note     string `json:"note"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		r.Location = defaultLocation
	}
	if len(r.Location) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 100 characters",
		})
	}

	if len(r.Note) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	Location string `json:"location"`
	Note     string `json:"note"`
	Remarks  string `json:"remarks"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		r.Location = defaultLocation
	}
	if len(r.Location) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 100 characters",
		})
	}

	if len(r.Note) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if len(r.Remarks) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "remarks",
			Message: "remarks must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckPointResponse struct {
	Time     *string `json:"time,omitempty"`
	Location string  `json:"location,omitempty"`
	Note     string  `json:"note,omitempty"`
}

type ShiftSnapshotResponse struct {
	Type           string `json:"type,omitempty"`
	ScheduledStart string `json:"scheduled_start,omitempty"`
	ScheduledEnd   string `json:"scheduled_end,omitempty"`
}

type AttendanceResponse struct {
	ID                  string                `json:"id"`
	EmployeeID          string                `json:"employee_id"`
	EmployeeCode        string                `json:"employee_code"`
	EmployeeName        string                `json:"employee_name,omitempty"`
	EmployeeDepartment  string                `json:"department,omitempty"`
	EmployeeDesignation string                `json:"designation,omitempty"`
	Date                string                `json:"date"`
	Day                 string                `json:"day"`
	CheckIn             CheckPointResponse    `json:"check_in"`
	CheckOut            CheckPointResponse    `json:"check_out"`
	Status              string                `json:"status"`
	Shift               ShiftSnapshotResponse `json:"shift"`
	WorkingMinutes      int                   `json:"working_minutes"`
	WorkingHours        string                `json:"working_hours"`
	OvertimeMinutes     int                   `json:"overtime_minutes"`
	IsLate              bool                  `json:"is_late"`
	LateMinutes         int                   `json:"late_minutes"`
	EarlyLeave          bool                  `json:"early_leave"`
	EarlyLeaveMinutes   int                   `json:"early_leave_minutes"`
	Remarks             string                `json:"remarks,omitempty"`
	CreatedAt           string                `json:"created_at"`
	UpdatedAt           string                `json:"updated_at"`
}

func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}

// NewAttendanceResponse renders a record with timestamps in loc.
func NewAttendanceResponse(a Attendance, loc *time.Location) AttendanceResponse {
	if loc == nil {
		loc = time.UTC
	}
	day := ""
	if d, err := calendar.ParseDayKey(a.DayKey, loc); err == nil {
		day = d.Weekday().String()
	}
	return AttendanceResponse{
		ID:                  a.ID,
		EmployeeID:          a.EmployeeID,
		EmployeeCode:        a.EmployeeCode,
		EmployeeName:        a.EmployeeName,
		EmployeeDepartment:  a.EmployeeDepartment,
		EmployeeDesignation: a.EmployeeDesignation,
		Date:                a.DayKey,
		Day:                 day,
		CheckIn: CheckPointResponse{
			Time:     timePtrToString(a.CheckIn.Time, loc),
			Location: a.CheckIn.Location,
			Note:     a.CheckIn.Note,
		},
		CheckOut: CheckPointResponse{
			Time:     timePtrToString(a.CheckOut.Time, loc),
			Location: a.CheckOut.Location,
			Note:     a.CheckOut.Note,
		},
		Status: string(a.Status),
		Shift: ShiftSnapshotResponse{
			Type:           a.Shift.Type,
			ScheduledStart: a.Shift.ScheduledStart,
			ScheduledEnd:   a.Shift.ScheduledEnd,
		},
		WorkingMinutes:    a.WorkingMinutes,
		WorkingHours:      calendar.FormatMinutes(a.WorkingMinutes),
		OvertimeMinutes:   a.OvertimeMinutes,
		IsLate:            a.IsLate,
		LateMinutes:       a.LateMinutes,
		EarlyLeave:        a.EarlyLeave,
		EarlyLeaveMinutes: a.EarlyLeaveMinutes,
		Remarks:           a.Remarks,
		CreatedAt:         a.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:         a.UpdatedAt.In(loc).Format(time.RFC3339),
	}
}

type MonthlyFilter struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (f *MonthlyFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month < 1 || f.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if f.Year < 2000 || f.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MonthlySummary counts a month of records. A late record counts toward both
// Late and Present.
type MonthlySummary struct {
	TotalDays            int    `json:"total_days"`
	Present              int    `json:"present"`
	Absent               int    `json:"absent"`
	Late                 int    `json:"late"`
	HalfDay              int    `json:"half_day"`
	OnLeave              int    `json:"on_leave"`
	TotalWorkingMinutes  int    `json:"total_working_minutes"`
	TotalWorkingHours    string `json:"total_working_hours"`
	TotalOvertimeMinutes int    `json:"total_overtime_minutes"`
}

type MonthlyAttendanceResponse struct {
	Year    int                  `json:"year"`
	Month   int                  `json:"month"`
	Records []AttendanceResponse `json:"records"`
	Summary MonthlySummary       `json:"summary"`
}

type HistoryFilter struct {
	Limit int `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceFilter struct {
	Date         *string `json:"date,omitempty"` // YYYY-MM-DD, takes precedence over month/year
	Month        *int    `json:"month,omitempty"`
	Year         *int    `json:"year,omitempty"`
	Department   *string `json:"department,omitempty"`
	Status       *string `json:"status,omitempty"`
	EmployeeCode *string `json:"employee_id,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 50 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if (f.Month == nil) != (f.Year == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month and year must be given together",
		})
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(Statuses, ", "),
		})
	}

	if f.EmployeeCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*f.EmployeeCode))
		f.EmployeeCode = &code
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DayRange resolves the filter's date or month into an inclusive day-key range.
// ok is false when neither is set.
func (f AttendanceFilter) DayRange() (from, to string, ok bool) {
	if f.Date != nil && *f.Date != "" {
		return *f.Date, *f.Date, true
	}
	if f.Month != nil && f.Year != nil {
		m := calendar.Month(*f.Year, time.Month(*f.Month), time.UTC)
		return m.StartKey, m.EndKey, true
	}
	return "", "", false
}

type ListAttendanceResponse struct {
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
	Records    []AttendanceResponse `json:"records"`
}

// UpdateAttendanceRequest is an admin correction of a record. Times are RFC3339.
type UpdateAttendanceRequest struct {
	ID       string  `json:"-"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Status   *string `json:"status,omitempty"`
	Remarks  *string `json:"remarks,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	var checkIn, checkOut time.Time
	if r.CheckIn != nil {
		t, ok := validator.IsValidDateTime(*r.CheckIn)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in",
				Message: "check_in must be an ISO8601 timestamp",
			})
		}
		checkIn = t
	}
	if r.CheckOut != nil {
		t, ok := validator.IsValidDateTime(*r.CheckOut)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check_out must be an ISO8601 timestamp",
			})
		}
		checkOut = t
	}
	if !checkIn.IsZero() && !checkOut.IsZero() && !checkOut.After(checkIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: ErrCheckOutBeforeCheckIn.Error(),
		})
	}

	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(Statuses, ", "),
		})
	}

	if r.Remarks != nil && len(*r.Remarks) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "remarks",
			Message: "remarks must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
