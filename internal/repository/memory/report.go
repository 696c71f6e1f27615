package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
)

type reportRepository struct {
	store *Store
}

func NewReportRepository(store *Store) report.ReportRepository {
	return &reportRepository{store: store}
}

// GetEmployeeCounts implements report.ReportRepository.
func (r *reportRepository) GetEmployeeCounts(ctx context.Context) (report.EmployeeCounts, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var counts report.EmployeeCounts
	for _, e := range r.store.employees {
		if e.Role != employee.RoleEmployee {
			continue
		}
		counts.Total++
		if e.IsActive() {
			counts.Active++
		}
	}
	return counts, nil
}

// GetDayCounts implements report.ReportRepository.
func (r *reportRepository) GetDayCounts(ctx context.Context, dayKey string) (report.DayCounts, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var counts report.DayCounts
	for _, a := range r.store.attendances {
		if a.DayKey != dayKey {
			continue
		}
		counts.Records++
		if a.IsLate {
			counts.Late++
		}
	}
	return counts, nil
}

// CountRecordsBetween implements report.ReportRepository.
func (r *reportRepository) CountRecordsBetween(ctx context.Context, fromKey, toKey string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var n int64
	for _, a := range r.store.attendances {
		if a.DayKey >= fromKey && a.DayKey <= toKey {
			n++
		}
	}
	return n, nil
}

// GetStatusBreakdown implements report.ReportRepository.
func (r *reportRepository) GetStatusBreakdown(ctx context.Context, fromKey, toKey string) ([]report.StatusAggregate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	type bucket struct {
		count   int64
		minutes int64
	}
	buckets := make(map[attendance.Status]*bucket)
	for _, a := range r.store.attendances {
		if a.DayKey < fromKey || a.DayKey > toKey {
			continue
		}
		b, ok := buckets[a.Status]
		if !ok {
			b = &bucket{}
			buckets[a.Status] = b
		}
		b.count++
		b.minutes += int64(a.WorkingMinutes)
	}

	stats := make([]report.StatusAggregate, 0, len(buckets))
	for status, b := range buckets {
		stats = append(stats, report.StatusAggregate{
			Status:            status,
			Count:             b.count,
			AvgWorkingMinutes: float64(b.minutes) / float64(b.count),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Status < stats[j].Status })
	return stats, nil
}

// GetRecentCheckIns implements report.ReportRepository.
func (r *reportRepository) GetRecentCheckIns(ctx context.Context, dayKey string, limit int) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := []attendance.Attendance{}
	for _, a := range r.store.attendances {
		if a.DayKey == dayKey && a.HasCheckedIn() {
			records = append(records, r.store.join(a))
		}
	}
	sortNewestFirst(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetDayRecords implements report.ReportRepository.
func (r *reportRepository) GetDayRecords(ctx context.Context, dayKey string) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := []attendance.Attendance{}
	for _, a := range r.store.attendances {
		if a.DayKey == dayKey {
			records = append(records, r.store.join(a))
		}
	}
	return records, nil
}

// GetExportRecords implements report.ReportRepository.
func (r *reportRepository) GetExportRecords(ctx context.Context, filter report.ExportFilter) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := []attendance.Attendance{}
	for _, a := range r.store.attendances {
		if a.DayKey < filter.FromKey || a.DayKey > filter.ToKey {
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

	sort.Slice(records, func(i, j int) bool {
		if records[i].EmployeeName != records[j].EmployeeName {
			return records[i].EmployeeName < records[j].EmployeeName
		}
		return records[i].DayKey < records[j].DayKey
	})
	return records, nil
}
