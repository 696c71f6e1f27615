//go:build integration

package postgresql

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("attendance_test"),
		tcPostgres.WithUsername("attendance"),
		tcPostgres.WithPassword("attendance"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, EnsureSchema(ctx, db))
	// Running twice must be harmless.
	require.NoError(t, EnsureSchema(ctx, db))

	return db
}

func newEmployee(code, email string) employee.Employee {
	return employee.Employee{
		ID:           uuid.Must(uuid.NewV7()).String(),
		EmployeeCode: code,
		Name:         "Employee " + code,
		Email:        email,
		PasswordHash: "hash",
		Role:         employee.RoleEmployee,
		Department:   "Engineering",
		Designation:  "Staff",
		Shift:        employee.Shift{Type: employee.ShiftMorning, StartTime: "09:00", EndTime: "18:00"},
		Status:       employee.StatusActive,
		JoinDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newCheckIn(emp employee.Employee, dayKey string, at time.Time) attendance.Attendance {
	return attendance.Attendance{
		ID:           uuid.Must(uuid.NewV7()).String(),
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		Date:         time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		DayKey:       dayKey,
		CheckIn:      attendance.CheckPoint{Time: &at, Location: "Office"},
		Status:       attendance.StatusPresent,
		Shift:        attendance.ShiftSnapshot{Type: "morning", ScheduledStart: "09:00", ScheduledEnd: "18:00"},
	}
}

func TestPostgres_EmployeeUniqueness(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewEmployeeRepository(db)

	_, err := repo.Create(ctx, newEmployee("EMP001", "john@company.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newEmployee("EMP001", "other@company.com"))
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = repo.Create(ctx, newEmployee("EMP002", "john@company.com"))
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	codeTaken, emailTaken, err := repo.ExistsByCodeOrEmail(ctx, "EMP001", "nobody@company.com")
	require.NoError(t, err)
	assert.True(t, codeTaken)
	assert.False(t, emailTaken)

	_, err = repo.GetByID(ctx, uuid.Must(uuid.NewV7()).String())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestPostgres_ConcurrentCheckInCreatesOneRecord(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	emp, err := NewEmployeeRepository(db).Create(ctx, newEmployee("EMP001", "john@company.com"))
	require.NoError(t, err)

	repo := NewAttendanceRepository(db)
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateCheckIn(ctx, newCheckIn(emp, "2024-01-15", at))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	n, err := NewReportRepository(db).CountRecordsBetween(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostgres_CheckOutOnlyOnce(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	emp, err := NewEmployeeRepository(db).Create(ctx, newEmployee("EMP001", "john@company.com"))
	require.NoError(t, err)

	repo := NewAttendanceRepository(db)
	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rec, err := repo.CreateCheckIn(ctx, newCheckIn(emp, "2024-01-15", in))
	require.NoError(t, err)
	assert.Equal(t, "Employee EMP001", rec.EmployeeName)

	out := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	rec.CheckOut = attendance.CheckPoint{Time: &out, Location: "Office"}
	rec.WorkingMinutes = 540

	_, err = repo.RecordCheckOut(ctx, rec)
	require.NoError(t, err)

	_, err = repo.RecordCheckOut(ctx, rec)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	stored, err := repo.GetByEmployeeAndDay(ctx, emp.ID, "2024-01-15")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 540, stored.WorkingMinutes)
	assert.True(t, stored.HasCheckedOut())

	breakdown, err := NewReportRepository(db).GetStatusBreakdown(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, []report.StatusAggregate{{Status: attendance.StatusPresent, Count: 1, AvgWorkingMinutes: 540}}, breakdown)
}

func TestPostgres_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewEmployeeRepository(db)

	_, err := repo.Create(ctx, newEmployee("EMP001", "john_doe@company.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newEmployee("EMP002", "johnxdoe@company.com"))
	require.NoError(t, err)

	search := "john_doe"
	list, total, err := repo.List(ctx, employee.EmployeeFilter{Search: &search, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "EMP001", list[0].EmployeeCode)

	department := "Eng%"
	_, total, err = repo.List(ctx, employee.EmployeeFilter{Department: &department, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
