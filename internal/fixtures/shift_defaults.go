package fixtures

import "github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"

// DefaultShiftTable returns the scheduled hours each shift type starts with.
// SHIFT_DEFAULTS can override individual entries at startup.
func DefaultShiftTable() employee.ShiftTable {
	return employee.ShiftTable{
		employee.ShiftMorning:   {StartTime: "09:00", EndTime: "18:00"},
		employee.ShiftAfternoon: {StartTime: "13:00", EndTime: "22:00"},
		employee.ShiftNight:     {StartTime: "22:00", EndTime: "07:00"},
		employee.ShiftFlexible:  {StartTime: "08:00", EndTime: "17:00"},
	}
}
