// Package memory is a process-local store implementing every repository port.
// It backs DB_DRIVER=memory for local runs and the service tests. All access
// goes through one mutex, which also serialises the per-day uniqueness check.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type Store struct {
	mu          sync.RWMutex
	employees   map[string]employee.Employee
	attendances map[string]attendance.Attendance
	dayIndex    map[string]string // employeeID + "|" + dayKey -> attendance ID
}

func NewStore() *Store {
	return &Store{
		employees:   make(map[string]employee.Employee),
		attendances: make(map[string]attendance.Attendance),
		dayIndex:    make(map[string]string),
	}
}

func dayIndexKey(employeeID, dayKey string) string {
	return employeeID + "|" + dayKey
}

// join copies employee fields onto a record; caller holds the lock.
func (s *Store) join(a attendance.Attendance) attendance.Attendance {
	if e, ok := s.employees[a.EmployeeID]; ok {
		a.EmployeeName = e.Name
		a.EmployeeDepartment = e.Department
		a.EmployeeDesignation = e.Designation
	}
	return a
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// sortNewestFirst orders records by day, then check-in time, newest first.
func sortNewestFirst(records []attendance.Attendance) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DayKey != records[j].DayKey {
			return records[i].DayKey > records[j].DayKey
		}
		return checkInAfter(records[i], records[j])
	})
}

func checkInAfter(a, b attendance.Attendance) bool {
	switch {
	case a.CheckIn.Time == nil:
		return false
	case b.CheckIn.Time == nil:
		return true
	default:
		return a.CheckIn.Time.After(*b.CheckIn.Time)
	}
}
