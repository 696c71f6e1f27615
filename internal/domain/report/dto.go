package report

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// DASHBOARD
// ========================================

type Overview struct {
	TotalEmployees  int64 `json:"total_employees"`
	ActiveEmployees int64 `json:"active_employees"`
	PresentToday    int64 `json:"present_today"`
	AbsentToday     int64 `json:"absent_today"`
	LateToday       int64 `json:"late_today"`
	MonthlyRecords  int64 `json:"monthly_records"`
}

type StatusStat struct {
	Status            string  `json:"status"`
	Count             int64   `json:"count"`
	AvgWorkingMinutes float64 `json:"avg_working_minutes"`
}

type DashboardResponse struct {
	Date           string                          `json:"date"`
	Overview       Overview                        `json:"overview"`
	MonthlyStats   []StatusStat                    `json:"monthly_stats"`
	RecentActivity []attendance.AttendanceResponse `json:"recent_activity"`
}

// Repository aggregates

type EmployeeCounts struct {
	Total  int64
	Active int64
}

type DayCounts struct {
	Records int64
	Late    int64
}

type StatusAggregate struct {
	Status            attendance.Status
	Count             int64
	AvgWorkingMinutes float64
}

// ========================================
// TODAY STATUS
// ========================================

type PresenceState string

const (
	StateCheckedIn  PresenceState = "checked-in"
	StateCheckedOut PresenceState = "checked-out"
	StateAbsent     PresenceState = "absent"
)

type TodayStatusItem struct {
	Employee   employee.EmployeeResponse      `json:"employee"`
	State      PresenceState                  `json:"state"`
	Attendance *attendance.AttendanceResponse `json:"attendance,omitempty"`
}

type TodayStatusSummary struct {
	Total      int `json:"total"`
	CheckedIn  int `json:"checked_in"`
	CheckedOut int `json:"checked_out"`
	Absent     int `json:"absent"`
}

type TodayStatusResponse struct {
	Date      string             `json:"date"`
	Employees []TodayStatusItem  `json:"employees"`
	Summary   TodayStatusSummary `json:"summary"`
}

// ========================================
// EXPORT
// ========================================

type ExportRequest struct {
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	Department   *string `json:"department,omitempty"`
	EmployeeCode *string `json:"employee_id,omitempty"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: ErrInvalidYear.Error(),
		})
	}
	if r.EmployeeCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*r.EmployeeCode))
		r.EmployeeCode = &code
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExportFilter struct {
	FromKey      string
	ToKey        string
	Department   *string
	EmployeeCode *string
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
