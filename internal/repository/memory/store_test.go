package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *Store, id, code, name, dept string) employee.Employee {
	t.Helper()
	emp, err := NewEmployeeRepository(store).Create(context.Background(), employee.Employee{
		ID:           id,
		EmployeeCode: code,
		Name:         name,
		Email:        code + "@company.com",
		Role:         employee.RoleEmployee,
		Department:   dept,
		Status:       employee.StatusActive,
	})
	require.NoError(t, err)
	return emp
}

func checkIn(emp employee.Employee, id, dayKey string, at time.Time) attendance.Attendance {
	return attendance.Attendance{
		ID:           id,
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		DayKey:       dayKey,
		CheckIn:      attendance.CheckPoint{Time: &at, Location: "Office"},
		Status:       attendance.StatusPresent,
	}
}

func TestEmployeeRepository_Uniqueness(t *testing.T) {
	store := NewStore()
	seed(t, store, "e1", "EMP001", "John Doe", "Engineering")
	repo := NewEmployeeRepository(store)

	_, err := repo.Create(context.Background(), employee.Employee{ID: "e2", EmployeeCode: "EMP001", Email: "x@company.com"})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = repo.Create(context.Background(), employee.Employee{ID: "e3", EmployeeCode: "EMP009", Email: "EMP001@company.com"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestEmployeeRepository_ListFilters(t *testing.T) {
	store := NewStore()
	seed(t, store, "e1", "EMP001", "John Doe", "Engineering")
	seed(t, store, "e2", "EMP002", "Jane Smith", "Marketing")
	seed(t, store, "e3", "EMP003", "Bob Wilson", "Engineering")
	repo := NewEmployeeRepository(store)
	require.NoError(t, repo.UpdateStatus(context.Background(), "e3", employee.StatusDeactivated))

	dept := "engineer"
	list, total, err := repo.List(context.Background(), employee.EmployeeFilter{Department: &dept, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	status := "inactive"
	list, total, err = repo.List(context.Background(), employee.EmployeeFilter{Status: &status, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "EMP003", list[0].EmployeeCode)

	search := "jane"
	list, _, err = repo.List(context.Background(), employee.EmployeeFilter{Search: &search, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EMP002", list[0].EmployeeCode)

	list, total, err = repo.List(context.Background(), employee.EmployeeFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 1)

	active, err := repo.ListActive(context.Background(), employee.RoleEmployee)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	assert.Equal(t, "Jane Smith", active[0].Name)

	departments, err := repo.ListDepartments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Marketing"}, departments)
}

func TestAttendanceRepository_ConcurrentCheckIn(t *testing.T) {
	store := NewStore()
	emp := seed(t, store, "e1", "EMP001", "John Doe", "Engineering")
	repo := NewAttendanceRepository(store)
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateCheckIn(context.Background(), checkIn(emp, string(rune('a'+i)), "2024-01-15", at))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	n, err := NewReportRepository(store).CountRecordsBetween(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAttendanceRepository_CheckInFillsPrecreatedRecord(t *testing.T) {
	store := NewStore()
	emp := seed(t, store, "e1", "EMP001", "John Doe", "Engineering")
	repo := NewAttendanceRepository(store)

	// Admin-created leave day without a check-in.
	leave := attendance.Attendance{ID: "leave", EmployeeID: emp.ID, EmployeeCode: emp.EmployeeCode, DayKey: "2024-01-15", Status: attendance.StatusOnLeave, Remarks: "approved"}
	_, err := repo.CreateCheckIn(context.Background(), leave)
	require.NoError(t, err)

	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rec, err := repo.CreateCheckIn(context.Background(), checkIn(emp, "new", "2024-01-15", at))
	require.NoError(t, err)
	assert.Equal(t, "leave", rec.ID)
	assert.Equal(t, "approved", rec.Remarks)
	assert.Equal(t, "John Doe", rec.EmployeeName)
	assert.True(t, rec.HasCheckedIn())
}

func TestAttendanceRepository_RecordCheckOut(t *testing.T) {
	store := NewStore()
	emp := seed(t, store, "e1", "EMP001", "John Doe", "Engineering")
	repo := NewAttendanceRepository(store)

	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rec, err := repo.CreateCheckIn(context.Background(), checkIn(emp, "a1", "2024-01-15", in))
	require.NoError(t, err)

	out := in.Add(9 * time.Hour)
	rec.CheckOut = attendance.CheckPoint{Time: &out}
	rec.WorkingMinutes = 540

	_, err = repo.RecordCheckOut(context.Background(), rec)
	require.NoError(t, err)

	_, err = repo.RecordCheckOut(context.Background(), rec)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	_, err = repo.RecordCheckOut(context.Background(), attendance.Attendance{ID: "missing"})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_ListAndReports(t *testing.T) {
	store := NewStore()
	john := seed(t, store, "e1", "EMP001", "John Doe", "Engineering")
	jane := seed(t, store, "e2", "EMP002", "Jane Smith", "Marketing")
	repo := NewAttendanceRepository(store)
	ctx := context.Background()

	for i, day := range []string{"2024-01-15", "2024-01-16", "2024-02-01"} {
		at := time.Date(2024, 1, 15+i, 9, 0, 0, 0, time.UTC)
		_, err := repo.CreateCheckIn(ctx, checkIn(john, "j"+day, day, at))
		require.NoError(t, err)
	}
	late := checkIn(jane, "jane1", "2024-01-15", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	late.IsLate = true
	late.Status = attendance.StatusLate
	_, err := repo.CreateCheckIn(ctx, late)
	require.NoError(t, err)

	month, year := 1, 2024
	records, total, err := repo.List(ctx, attendance.AttendanceFilter{Month: &month, Year: &year, Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "2024-01-16", records[0].DayKey)

	dept := "market"
	records, _, err = repo.List(ctx, attendance.AttendanceFilter{Department: &dept, Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Smith", records[0].EmployeeName)

	code := "EMP999"
	records, total, err = repo.List(ctx, attendance.AttendanceFilter{EmployeeCode: &code, Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)

	byEmployee, err := repo.ListByEmployee(ctx, john.ID, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, byEmployee, 2)
	assert.Equal(t, "2024-01-15", byEmployee[0].DayKey)

	recent, err := repo.ListRecentByEmployee(ctx, john.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2024-02-01", recent[0].DayKey)

	reports := NewReportRepository(store)
	day, err := reports.GetDayCounts(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, report.DayCounts{Records: 2, Late: 1}, day)

	latest, err := reports.GetRecentCheckIns(ctx, "2024-01-15", 10)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "Jane Smith", latest[0].EmployeeName)

	exported, err := reports.GetExportRecords(ctx, report.ExportFilter{FromKey: "2024-01-01", ToKey: "2024-01-31"})
	require.NoError(t, err)
	require.Len(t, exported, 3)
	assert.Equal(t, "Jane Smith", exported[0].EmployeeName)
	assert.Equal(t, "John Doe", exported[1].EmployeeName)

	breakdown, err := reports.GetStatusBreakdown(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, []report.StatusAggregate{
		{Status: attendance.StatusLate, Count: 1},
		{Status: attendance.StatusPresent, Count: 2},
	}, breakdown)
}
