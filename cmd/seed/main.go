// Command seed loads an admin, five sample employees and attendance for the
// elapsed weekdays of the current month. Existing employees are skipped, so
// it can be run more than once.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	"github.com/jackc/pgx/v5"
)

var seedEmployees = []employee.CreateEmployeeRequest{
	{
		EmployeeCode: "ADMIN001", Name: "System Administrator", Email: "admin@company.com", Password: "admin123",
		Role: "admin", Department: "Administration", Designation: "System Admin",
		Shift: &employee.ShiftRequest{Type: "morning", StartTime: "09:00", EndTime: "18:00"},
	},
	{
		EmployeeCode: "EMP001", Name: "Rajesh Kumar", Email: "rajesh@company.com", Password: "emp123",
		Department: "Engineering", Designation: "Senior Developer", Phone: "9876543210",
		Shift: &employee.ShiftRequest{Type: "morning", StartTime: "09:00", EndTime: "18:00"},
	},
	{
		EmployeeCode: "EMP002", Name: "Priya Sharma", Email: "priya@company.com", Password: "emp123",
		Department: "Design", Designation: "UI/UX Designer", Phone: "9876543211",
		Shift: &employee.ShiftRequest{Type: "morning", StartTime: "10:00", EndTime: "19:00"},
	},
	{
		EmployeeCode: "EMP003", Name: "Mohammed Ali", Email: "mohammed@company.com", Password: "emp123",
		Department: "Engineering", Designation: "Junior Developer", Phone: "9876543212",
		Shift: &employee.ShiftRequest{Type: "afternoon", StartTime: "13:00", EndTime: "22:00"},
	},
	{
		EmployeeCode: "EMP004", Name: "Ananya Patel", Email: "ananya@company.com", Password: "emp123",
		Department: "HR", Designation: "HR Manager", Phone: "9876543213",
		Shift: &employee.ShiftRequest{Type: "morning", StartTime: "09:00", EndTime: "17:00"},
	},
	{
		EmployeeCode: "EMP005", Name: "Vikram Singh", Email: "vikram@company.com", Password: "emp123",
		Department: "Sales", Designation: "Sales Executive", Phone: "9876543214",
		Shift: &employee.ShiftRequest{Type: "flexible", StartTime: "08:00", EndTime: "17:00"},
	},
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(context.Background()); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close(ctx)

	employeeSvc := employeeService.NewEmployeeService(repos.Employees, cfg.Shifts)

	// On postgres the directory is written in one transaction.
	var staff []employee.Employee
	if repos.Postgres != nil {
		err = postgresql.WithTransaction(ctx, repos.Postgres, func(tx pgx.Tx) error {
			staff, err = createEmployees(postgresql.ContextWithTx(ctx, tx), employeeSvc, repos.Employees)
			return err
		})
	} else {
		staff, err = createEmployees(ctx, employeeSvc, repos.Employees)
	}
	if err != nil {
		return err
	}

	loc := cfg.Location()
	created, err := seedAttendance(ctx, repos, staff, time.Now().In(loc), loc)
	if err != nil {
		return err
	}

	slog.Info("seed completed",
		"employees", len(staff),
		"attendance_records", created,
		"admin_login", "admin@company.com / admin123",
		"employee_login", "rajesh@company.com / emp123",
	)
	return nil
}

// createEmployees registers every sample account, reusing any that already exist.
func createEmployees(ctx context.Context, svc employee.EmployeeService, repo employee.EmployeeRepository) ([]employee.Employee, error) {
	staff := make([]employee.Employee, 0, len(seedEmployees))
	for _, req := range seedEmployees {
		_, err := svc.CreateEmployee(ctx, req)
		switch {
		case err == nil:
			slog.Info("employee created", "employee_id", req.EmployeeCode)
		case errors.Is(err, employee.ErrEmailExists), errors.Is(err, employee.ErrEmployeeCodeExists):
			slog.Info("employee exists, skipped", "employee_id", req.EmployeeCode)
		default:
			return nil, fmt.Errorf("create %s: %w", req.EmployeeCode, err)
		}

		emp, err := repo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", req.EmployeeCode, err)
		}
		staff = append(staff, emp)
	}
	return staff, nil
}

// seedAttendance replays check-in and check-out through the attendance service
// for every elapsed weekday, so metrics are computed exactly as in production.
// Roughly one day in ten is skipped as absent and one in five starts late.
func seedAttendance(ctx context.Context, repos *repository.Repositories, staff []employee.Employee, now time.Time, loc *time.Location) (int, error) {
	var clock time.Time
	svc := attendanceService.NewAttendanceService(repos.Attendances, repos.Employees, loc,
		attendanceService.WithClock(func() time.Time { return clock }),
	)

	rng := rand.New(rand.NewPCG(uint64(now.Year()), uint64(now.Month())))
	created := 0

	for _, emp := range staff {
		if emp.IsAdmin() {
			continue
		}
		principal := auth.Principal{
			EmployeeID:   emp.ID,
			EmployeeCode: emp.EmployeeCode,
			Email:        emp.Email,
			Role:         emp.Role,
		}

		for day := 1; day < now.Day(); day++ {
			date := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, loc)
			if calendar.IsWeekend(date) {
				continue
			}
			if rng.Float64() < 0.1 {
				continue
			}

			start, err := calendar.On(date, emp.Shift.StartTime)
			if err != nil {
				return created, fmt.Errorf("shift start for %s: %w", emp.EmployeeCode, err)
			}
			lateMinutes := 0
			if rng.Float64() < 0.2 {
				lateMinutes = 1 + rng.IntN(29)
			}
			checkIn := start.Add(time.Duration(lateMinutes) * time.Minute)
			checkOut := checkIn.Add(time.Duration(480+rng.IntN(60)) * time.Minute)

			clock = checkIn
			if _, err := svc.CheckIn(ctx, principal, attendance.CheckInRequest{Location: "Office"}); err != nil {
				if attendance.IsConflict(err) {
					continue
				}
				return created, fmt.Errorf("check in %s on %s: %w", emp.EmployeeCode, date.Format("2006-01-02"), err)
			}

			clock = checkOut
			if _, err := svc.CheckOut(ctx, principal, attendance.CheckOutRequest{Location: "Office"}); err != nil {
				return created, fmt.Errorf("check out %s on %s: %w", emp.EmployeeCode, date.Format("2006-01-02"), err)
			}
			created++
		}
	}
	return created, nil
}
