package mongodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reportRepository struct {
	db          *mongo.Database
	employees   *mongo.Collection
	attendances *mongo.Collection
}

func NewReportRepository(db *mongo.Database) report.ReportRepository {
	return &reportRepository{
		db:          db,
		employees:   db.Collection(employeesCollection),
		attendances: db.Collection(attendancesCollection),
	}
}

func dayRange(fromKey, toKey string) bson.M {
	return bson.M{"$gte": fromKey, "$lte": toKey}
}

func (r *reportRepository) findAttendances(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]attendance.Attendance, error) {
	cursor, err := r.attendances.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return joinEmployees(ctx, r.db, docs)
}

// GetEmployeeCounts implements report.ReportRepository.
func (r *reportRepository) GetEmployeeCounts(ctx context.Context) (report.EmployeeCounts, error) {
	role := string(employee.RoleEmployee)

	total, err := r.employees.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return report.EmployeeCounts{}, fmt.Errorf("failed to count employees: %w", err)
	}
	active, err := r.employees.CountDocuments(ctx, bson.M{"role": role, "status": string(employee.StatusActive)})
	if err != nil {
		return report.EmployeeCounts{}, fmt.Errorf("failed to count active employees: %w", err)
	}
	return report.EmployeeCounts{Total: total, Active: active}, nil
}

// GetDayCounts implements report.ReportRepository.
func (r *reportRepository) GetDayCounts(ctx context.Context, dayKey string) (report.DayCounts, error) {
	records, err := r.attendances.CountDocuments(ctx, bson.M{"day_key": dayKey})
	if err != nil {
		return report.DayCounts{}, fmt.Errorf("failed to count day records: %w", err)
	}
	late, err := r.attendances.CountDocuments(ctx, bson.M{"day_key": dayKey, "is_late": true})
	if err != nil {
		return report.DayCounts{}, fmt.Errorf("failed to count late records: %w", err)
	}
	return report.DayCounts{Records: records, Late: late}, nil
}

// CountRecordsBetween implements report.ReportRepository.
func (r *reportRepository) CountRecordsBetween(ctx context.Context, fromKey, toKey string) (int64, error) {
	n, err := r.attendances.CountDocuments(ctx, bson.M{"day_key": dayRange(fromKey, toKey)})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// GetStatusBreakdown implements report.ReportRepository.
func (r *reportRepository) GetStatusBreakdown(ctx context.Context, fromKey, toKey string) ([]report.StatusAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"day_key": dayRange(fromKey, toKey)}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"avg":   bson.M{"$avg": "$working_minutes"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.attendances.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}

	var rows []struct {
		Status string  `bson:"_id"`
		Count  int64   `bson:"count"`
		Avg    float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode status breakdown: %w", err)
	}

	stats := make([]report.StatusAggregate, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, report.StatusAggregate{
			Status:            attendance.Status(row.Status),
			Count:             row.Count,
			AvgWorkingMinutes: row.Avg,
		})
	}
	return stats, nil
}

// GetRecentCheckIns implements report.ReportRepository.
func (r *reportRepository) GetRecentCheckIns(ctx context.Context, dayKey string, limit int) ([]attendance.Attendance, error) {
	records, err := r.findAttendances(ctx,
		bson.M{"day_key": dayKey, "check_in.time": bson.M{"$ne": nil}},
		options.Find().SetSort(bson.D{{Key: "check_in.time", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent check-ins: %w", err)
	}
	return records, nil
}

// GetDayRecords implements report.ReportRepository.
func (r *reportRepository) GetDayRecords(ctx context.Context, dayKey string) ([]attendance.Attendance, error) {
	records, err := r.findAttendances(ctx, bson.M{"day_key": dayKey})
	if err != nil {
		return nil, fmt.Errorf("failed to get day records: %w", err)
	}
	return records, nil
}

// GetExportRecords implements report.ReportRepository.
func (r *reportRepository) GetExportRecords(ctx context.Context, filter report.ExportFilter) ([]attendance.Attendance, error) {
	query := bson.M{"day_key": dayRange(filter.FromKey, filter.ToKey)}
	if filter.EmployeeCode != nil && *filter.EmployeeCode != "" {
		query["employee_code"] = *filter.EmployeeCode
	}
	if filter.Department != nil && *filter.Department != "" {
		ids, err := employeeIDsInDepartment(ctx, r.db, *filter.Department)
		if err != nil {
			return nil, err
		}
		query["employee_id"] = bson.M{"$in": ids}
	}

	records, err := r.findAttendances(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get export records: %w", err)
	}

	// Names live on the employee documents, so the sort happens after the join.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].EmployeeName != records[j].EmployeeName {
			return records[i].EmployeeName < records[j].EmployeeName
		}
		return records[i].DayKey < records[j].DayKey
	})
	return records, nil
}
