package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "day_key", Value: -1}, {Key: "check_in.time", Value: -1}}

type attendanceRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) attendance.AttendanceRepository {
	return &attendanceRepository{db: db, coll: db.Collection(attendancesCollection)}
}

func (r *attendanceRepository) findMany(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]attendance.Attendance, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return joinEmployees(ctx, r.db, docs)
}

// CreateCheckIn implements attendance.AttendanceRepository.
// The upsert matches only a same-day document without a check-in. When the
// day already has one, the insert half hits the unique index instead.
func (r *attendanceRepository) CreateCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	now := time.Now().UTC()

	set := metricsFields(a)
	set["check_in.time"] = a.CheckIn.Time
	set["check_in.location"] = a.CheckIn.Location
	set["check_in.note"] = a.CheckIn.Note
	set["check_out.time"] = nil
	set["check_out.location"] = ""
	set["check_out.note"] = ""
	set["shift"] = shiftSnapshotDocument{
		Type:           a.Shift.Type,
		ScheduledStart: a.Shift.ScheduledStart,
		ScheduledEnd:   a.Shift.ScheduledEnd,
	}
	set["updated_at"] = now

	setOnInsert := bson.M{
		"_id":           a.ID,
		"employee_code": a.EmployeeCode,
		"date":          a.Date,
		"created_at":    now,
	}
	if a.Remarks != "" {
		set["remarks"] = a.Remarks
	} else {
		setOnInsert["remarks"] = ""
	}

	filter := bson.M{
		"employee_id":   a.EmployeeID,
		"day_key":       a.DayKey,
		"check_in.time": nil,
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc attendanceDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set, "$setOnInsert": setOnInsert}, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create check-in: %w", err)
	}

	records, err := joinEmployees(ctx, r.db, []attendanceDocument{doc})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return records[0], nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	records, err := r.findMany(ctx, bson.M{"_id": id}, options.Find().SetLimit(1))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if len(records) == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return records[0], nil
}

// GetByEmployeeAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDay(ctx context.Context, employeeID string, dayKey string) (*attendance.Attendance, error) {
	records, err := r.findMany(ctx, bson.M{"employee_id": employeeID, "day_key": dayKey}, options.Find().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by day: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// RecordCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) RecordCheckOut(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	now := time.Now().UTC()

	set := metricsFields(a)
	set["check_out"] = checkPointDocument{
		Time:     a.CheckOut.Time,
		Location: a.CheckOut.Location,
		Note:     a.CheckOut.Note,
	}
	set["remarks"] = a.Remarks
	set["updated_at"] = now

	filter := bson.M{
		"_id":            a.ID,
		"check_in.time":  bson.M{"$ne": nil},
		"check_out.time": nil,
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to record check-out: %w", err)
	}
	if res.MatchedCount == 0 {
		current, err := r.GetByID(ctx, a.ID)
		if err != nil {
			return attendance.Attendance{}, err
		}
		if !current.HasCheckedIn() {
			return attendance.Attendance{}, attendance.ErrNotCheckedIn
		}
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	a.UpdatedAt = now
	return a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	now := time.Now().UTC()

	set := metricsFields(a)
	set["check_in"] = checkPointDocument{Time: a.CheckIn.Time, Location: a.CheckIn.Location, Note: a.CheckIn.Note}
	set["check_out"] = checkPointDocument{Time: a.CheckOut.Time, Location: a.CheckOut.Location, Note: a.CheckOut.Note}
	set["remarks"] = a.Remarks
	set["updated_at"] = now

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": set})
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}
	if res.MatchedCount == 0 {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	a.UpdatedAt = now
	return a, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, fromKey, toKey string) ([]attendance.Attendance, error) {
	filter := bson.M{
		"employee_id": employeeID,
		"day_key":     bson.M{"$gte": fromKey, "$lte": toKey},
	}
	records, err := r.findMany(ctx, filter, options.Find().SetSort(bson.D{{Key: "day_key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list employee attendance: %w", err)
	}
	return records, nil
}

// ListRecentByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListRecentByEmployee(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	records, err := r.findMany(ctx,
		bson.M{"employee_id": employeeID},
		options.Find().SetSort(newestFirst).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	return records, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	query := bson.M{}
	if from, to, ok := filter.DayRange(); ok {
		query["day_key"] = bson.M{"$gte": from, "$lte": to}
	}
	if filter.Status != nil && *filter.Status != "" {
		query["status"] = *filter.Status
	}
	if filter.EmployeeCode != nil && *filter.EmployeeCode != "" {
		query["employee_code"] = *filter.EmployeeCode
	}
	if filter.Department != nil && *filter.Department != "" {
		ids, err := employeeIDsInDepartment(ctx, r.db, *filter.Department)
		if err != nil {
			return nil, 0, err
		}
		query["employee_id"] = bson.M{"$in": ids}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	records, err := r.findMany(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, total, nil
}
