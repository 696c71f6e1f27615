package attendance

import (
	"time"
)

type Attendance struct {
	ID           string
	EmployeeID   string
	EmployeeCode string
	Date         time.Time
	DayKey       string
	CheckIn      CheckPoint
	CheckOut     CheckPoint
	Status       Status
	Shift        ShiftSnapshot

	WorkingMinutes    int
	OvertimeMinutes   int
	IsLate            bool
	LateMinutes       int
	EarlyLeave        bool
	EarlyLeaveMinutes int

	Remarks   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName        string
	EmployeeDepartment  string
	EmployeeDesignation string
}

// CheckPoint is one side of the day's attendance: when, where and an optional note.
type CheckPoint struct {
	Time     *time.Time
	Location string
	Note     string
}

// ShiftSnapshot is the employee's shift as it was at check-in. Later edits to
// the employee do not change metrics of past records.
type ShiftSnapshot struct {
	Type           string
	ScheduledStart string
	ScheduledEnd   string
}

// IsOvernight reports whether the shift ends on the calendar day after it starts.
func (s ShiftSnapshot) IsOvernight() bool {
	return s.ScheduledStart != "" && s.ScheduledEnd != "" && s.ScheduledEnd <= s.ScheduledStart
}

func (a Attendance) HasCheckedIn() bool {
	return a.CheckIn.Time != nil
}

func (a Attendance) HasCheckedOut() bool {
	return a.CheckOut.Time != nil
}

// Metrics are the values derived from check-in/check-out against a shift.
type Metrics struct {
	WorkingMinutes    int
	OvertimeMinutes   int
	IsLate            bool
	LateMinutes       int
	EarlyLeave        bool
	EarlyLeaveMinutes int
	Status            Status
}

// ApplyMetrics copies derived values onto the record.
func (a *Attendance) ApplyMetrics(m Metrics) {
	a.WorkingMinutes = m.WorkingMinutes
	a.OvertimeMinutes = m.OvertimeMinutes
	a.IsLate = m.IsLate
	a.LateMinutes = m.LateMinutes
	a.EarlyLeave = m.EarlyLeave
	a.EarlyLeaveMinutes = m.EarlyLeaveMinutes
	a.Status = m.Status
}

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLate    Status = "late"
	StatusOnLeave Status = "on-leave"
	StatusHoliday Status = "holiday"
	StatusWeekend Status = "weekend"
)

var Statuses = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusHalfDay),
	string(StatusLate),
	string(StatusOnLeave),
	string(StatusHoliday),
	string(StatusWeekend),
}

func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if string(s) == v {
			return true
		}
	}
	return false
}
