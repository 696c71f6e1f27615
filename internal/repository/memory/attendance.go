package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

// CreateCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) CreateCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	key := dayIndexKey(a.EmployeeID, a.DayKey)

	if id, ok := r.store.dayIndex[key]; ok {
		existing := r.store.attendances[id]
		if existing.HasCheckedIn() {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
		a.CheckOut = attendance.CheckPoint{}
		if a.Remarks == "" {
			a.Remarks = existing.Remarks
		}
	} else {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	r.store.attendances[a.ID] = a
	r.store.dayIndex[key] = a.ID
	return r.store.join(a), nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.store.join(a), nil
}

// GetByEmployeeAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDay(ctx context.Context, employeeID string, dayKey string) (*attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.dayIndex[dayIndexKey(employeeID, dayKey)]
	if !ok {
		return nil, nil
	}
	a := r.store.join(r.store.attendances[id])
	return &a, nil
}

// RecordCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) RecordCheckOut(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.attendances[a.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if !current.HasCheckedIn() {
		return attendance.Attendance{}, attendance.ErrNotCheckedIn
	}
	if current.HasCheckedOut() {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	current.CheckOut = a.CheckOut
	current.WorkingMinutes = a.WorkingMinutes
	current.OvertimeMinutes = a.OvertimeMinutes
	current.IsLate = a.IsLate
	current.LateMinutes = a.LateMinutes
	current.EarlyLeave = a.EarlyLeave
	current.EarlyLeaveMinutes = a.EarlyLeaveMinutes
	current.Status = a.Status
	current.Remarks = a.Remarks
	current.UpdatedAt = time.Now().UTC()
	r.store.attendances[a.ID] = current

	return r.store.join(current), nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.attendances[a.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	// Owner and day are fixed once the record exists.
	a.EmployeeID = current.EmployeeID
	a.EmployeeCode = current.EmployeeCode
	a.DayKey = current.DayKey
	a.Date = current.Date
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	r.store.attendances[a.ID] = a

	return r.store.join(a), nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, fromKey, toKey string) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := []attendance.Attendance{}
	for _, a := range r.store.attendances {
		if a.EmployeeID != employeeID || a.DayKey < fromKey || a.DayKey > toKey {
			continue
		}
		records = append(records, r.store.join(a))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].DayKey < records[j].DayKey })
	return records, nil
}

// ListRecentByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListRecentByEmployee(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := []attendance.Attendance{}
	for _, a := range r.store.attendances {
		if a.EmployeeID == employeeID {
			records = append(records, r.store.join(a))
		}
	}
	sortNewestFirst(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	from, to, ranged := filter.DayRange()

	records := []attendance.Attendance{}
	for _, a := range r.store.attendances {
		if ranged && (a.DayKey < from || a.DayKey > to) {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(a.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeCode != nil && *filter.EmployeeCode != "" && a.EmployeeCode != *filter.EmployeeCode {
			continue
		}
		joined := r.store.join(a)
		if filter.Department != nil && *filter.Department != "" && !containsFold(joined.EmployeeDepartment, *filter.Department) {
			continue
		}
		records = append(records, joined)
	}

	sortNewestFirst(records)
	return paginate(records, filter.Page, filter.Limit), int64(len(records)), nil
}
