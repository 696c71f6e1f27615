package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/spreadsheet"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentActivityLimit = 10
	emptyCell           = "—"
)

type ReportServiceImpl struct {
	report.ReportRepository
	employeeRepo employee.EmployeeRepository
	location     *time.Location
	now          func() time.Time
}

type Option func(*ReportServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ReportServiceImpl) {
		s.now = now
	}
}

func NewReportService(
	reportRepo report.ReportRepository,
	employeeRepo employee.EmployeeRepository,
	loc *time.Location,
	opts ...Option,
) report.ReportService {
	if loc == nil {
		loc = time.UTC
	}
	s := &ReportServiceImpl{
		ReportRepository: reportRepo,
		employeeRepo:     employeeRepo,
		location:         loc,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard returns the admin overview using parallel queries.
// absent_today is active employees minus today's records, floored at zero; it
// counts any record for today (on-leave included) as present.
func (s *ReportServiceImpl) Dashboard(ctx context.Context) (report.DashboardResponse, error) {
	now := s.now().In(s.location)
	today := calendar.DayKey(now, s.location)
	month := calendar.Month(now.Year(), now.Month(), s.location)

	var (
		employeeCounts report.EmployeeCounts
		dayCounts      report.DayCounts
		monthlyRecords int64
		breakdown      []report.StatusAggregate
		recent         []attendance.Attendance
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Employee totals
	g.Go(func() error {
		counts, err := s.GetEmployeeCounts(gCtx)
		if err != nil {
			return fmt.Errorf("employee counts: %w", err)
		}
		employeeCounts = counts
		return nil
	})

	// 2. Today's records and lateness
	g.Go(func() error {
		counts, err := s.GetDayCounts(gCtx, today)
		if err != nil {
			return fmt.Errorf("day counts: %w", err)
		}
		dayCounts = counts
		return nil
	})

	// 3. Records this month
	g.Go(func() error {
		n, err := s.CountRecordsBetween(gCtx, month.StartKey, month.EndKey)
		if err != nil {
			return fmt.Errorf("monthly records: %w", err)
		}
		monthlyRecords = n
		return nil
	})

	// 4. Monthly status breakdown
	g.Go(func() error {
		stats, err := s.GetStatusBreakdown(gCtx, month.StartKey, month.EndKey)
		if err != nil {
			return fmt.Errorf("status breakdown: %w", err)
		}
		breakdown = stats
		return nil
	})

	// 5. Latest check-ins today
	g.Go(func() error {
		records, err := s.GetRecentCheckIns(gCtx, today, recentActivityLimit)
		if err != nil {
			return fmt.Errorf("recent check-ins: %w", err)
		}
		recent = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return report.DashboardResponse{}, fmt.Errorf("failed to build dashboard: %w", err)
	}

	absent := employeeCounts.Active - dayCounts.Records
	if absent < 0 {
		absent = 0
	}

	stats := make([]report.StatusStat, 0, len(breakdown))
	for _, b := range breakdown {
		stats = append(stats, report.StatusStat{
			Status:            string(b.Status),
			Count:             b.Count,
			AvgWorkingMinutes: decimal.NewFromFloat(b.AvgWorkingMinutes).Round(2).InexactFloat64(),
		})
	}

	activity := make([]attendance.AttendanceResponse, 0, len(recent))
	for _, r := range recent {
		activity = append(activity, attendance.NewAttendanceResponse(r, s.location))
	}

	return report.DashboardResponse{
		Date: today,
		Overview: report.Overview{
			TotalEmployees:  employeeCounts.Total,
			ActiveEmployees: employeeCounts.Active,
			PresentToday:    dayCounts.Records,
			AbsentToday:     absent,
			LateToday:       dayCounts.Late,
			MonthlyRecords:  monthlyRecords,
		},
		MonthlyStats:   stats,
		RecentActivity: activity,
	}, nil
}

// TodayStatus implements report.ReportService.
func (s *ReportServiceImpl) TodayStatus(ctx context.Context) (report.TodayStatusResponse, error) {
	today := calendar.DayKey(s.now(), s.location)

	var (
		employees []employee.Employee
		records   []attendance.Attendance
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.employeeRepo.ListActive(gCtx, employee.RoleEmployee)
		if err != nil {
			return fmt.Errorf("active employees: %w", err)
		}
		employees = list
		return nil
	})
	g.Go(func() error {
		list, err := s.GetDayRecords(gCtx, today)
		if err != nil {
			return fmt.Errorf("day records: %w", err)
		}
		records = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.TodayStatusResponse{}, fmt.Errorf("failed to get today status: %w", err)
	}

	byEmployee := make(map[string]attendance.Attendance, len(records))
	for _, r := range records {
		byEmployee[r.EmployeeID] = r
	}

	resp := report.TodayStatusResponse{
		Date:      today,
		Employees: make([]report.TodayStatusItem, 0, len(employees)),
	}
	for _, e := range employees {
		item := report.TodayStatusItem{
			Employee: employee.NewEmployeeResponse(e),
			State:    report.StateAbsent,
		}
		if r, ok := byEmployee[e.ID]; ok {
			ar := attendance.NewAttendanceResponse(r, s.location)
			item.Attendance = &ar
			switch {
			case r.HasCheckedOut():
				item.State = report.StateCheckedOut
			case r.HasCheckedIn():
				item.State = report.StateCheckedIn
			}
		}

		switch item.State {
		case report.StateCheckedIn:
			resp.Summary.CheckedIn++
		case report.StateCheckedOut:
			resp.Summary.CheckedOut++
		default:
			resp.Summary.Absent++
		}
		resp.Employees = append(resp.Employees, item)
	}
	resp.Summary.Total = len(employees)

	return resp, nil
}

var exportHeaders = []string{
	"Employee ID", "Name", "Department", "Designation", "Date", "Day",
	"Shift Type", "Shift Start", "Shift End", "Check In", "Check Out", "Status",
	"Working Hours", "Overtime", "Late", "Early Leave", "Remarks",
}

var exportColumnWidths = []float64{12, 20, 15, 15, 12, 12, 12, 12, 12, 12, 12, 12, 15, 12, 15, 20, 20}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context, req report.ExportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}

	month := calendar.Month(req.Year, time.Month(req.Month), s.location)

	records, err := s.GetExportRecords(ctx, report.ExportFilter{
		FromKey:      month.StartKey,
		ToKey:        month.EndKey,
		Department:   req.Department,
		EmployeeCode: req.EmployeeCode,
	})
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to get export records: %w", err)
	}

	rows := make([][]interface{}, 0, len(records))
	counts := make(map[attendance.Status]int)
	for _, r := range records {
		rows = append(rows, s.exportRow(r))
		counts[r.Status]++
	}

	summary := [][]interface{}{
		{"Month/Year", fmt.Sprintf("%d/%d", req.Month, req.Year)},
		{"Total Records", len(records)},
	}
	for _, status := range attendance.Statuses {
		summary = append(summary, []interface{}{strings.ToUpper(status), counts[attendance.Status(status)]})
	}

	data, err := spreadsheet.Build(
		spreadsheet.Sheet{
			Name:         "Attendance",
			Headers:      exportHeaders,
			Rows:         rows,
			ColumnWidths: exportColumnWidths,
		},
		spreadsheet.Sheet{
			Name:         "Summary",
			Headers:      []string{"Metric", "Value"},
			Rows:         summary,
			ColumnWidths: []float64{20, 15},
		},
	)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("Attendance_%s_%d.xlsx", calendar.MonthName(time.Month(req.Month)), req.Year),
		ContentType: spreadsheet.ContentType,
		Data:        data,
	}, nil
}

func (s *ReportServiceImpl) exportRow(r attendance.Attendance) []interface{} {
	day := ""
	if d, err := calendar.ParseDayKey(r.DayKey, s.location); err == nil {
		day = d.Weekday().String()
	}

	return []interface{}{
		r.EmployeeCode,
		r.EmployeeName,
		r.EmployeeDepartment,
		r.EmployeeDesignation,
		r.DayKey,
		day,
		orEmpty(r.Shift.Type),
		orEmpty(r.Shift.ScheduledStart),
		orEmpty(r.Shift.ScheduledEnd),
		s.clockCell(r.CheckIn.Time),
		s.clockCell(r.CheckOut.Time),
		strings.ToUpper(string(r.Status)),
		minutesCell(r.WorkingMinutes),
		minutesCell(r.OvertimeMinutes),
		flagCell(r.IsLate, r.LateMinutes),
		flagCell(r.EarlyLeave, r.EarlyLeaveMinutes),
		r.Remarks,
	}
}

func (s *ReportServiceImpl) clockCell(t *time.Time) string {
	if t == nil {
		return emptyCell
	}
	return t.In(s.location).Format("03:04:05 PM")
}

func minutesCell(minutes int) string {
	if minutes <= 0 {
		return emptyCell
	}
	return calendar.FormatMinutes(minutes)
}

func flagCell(set bool, minutes int) string {
	if !set {
		return "No"
	}
	return fmt.Sprintf("Yes (%d min)", minutes)
}

func orEmpty(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}
