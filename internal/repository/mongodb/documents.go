// Package mongodb stores employees and attendance in MongoDB. A unique
// (employee_id, day_key) index enforces one attendance document per day.
package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	employeesCollection   = "employees"
	attendancesCollection = "attendances"
)

type shiftDocument struct {
	Type      string `bson:"type"`
	StartTime string `bson:"start_time"`
	EndTime   string `bson:"end_time"`
}

type employeeDocument struct {
	ID           string        `bson:"_id"`
	EmployeeCode string        `bson:"employee_code"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	Role         string        `bson:"role"`
	Department   string        `bson:"department"`
	Designation  string        `bson:"designation"`
	Phone        string        `bson:"phone"`
	Shift        shiftDocument `bson:"shift"`
	Status       string        `bson:"status"`
	JoinDate     time.Time     `bson:"join_date"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

func toEmployeeDocument(e employee.Employee) employeeDocument {
	return employeeDocument{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		Role:         string(e.Role),
		Department:   e.Department,
		Designation:  e.Designation,
		Phone:        e.Phone,
		Shift: shiftDocument{
			Type:      string(e.Shift.Type),
			StartTime: e.Shift.StartTime,
			EndTime:   e.Shift.EndTime,
		},
		Status:    string(e.Status),
		JoinDate:  e.JoinDate,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (d employeeDocument) toEntity() employee.Employee {
	return employee.Employee{
		ID:           d.ID,
		EmployeeCode: d.EmployeeCode,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         employee.Role(d.Role),
		Department:   d.Department,
		Designation:  d.Designation,
		Phone:        d.Phone,
		Shift: employee.Shift{
			Type:      employee.ShiftType(d.Shift.Type),
			StartTime: d.Shift.StartTime,
			EndTime:   d.Shift.EndTime,
		},
		Status:    employee.LifecycleStatus(d.Status),
		JoinDate:  d.JoinDate.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type checkPointDocument struct {
	Time     *time.Time `bson:"time"`
	Location string     `bson:"location"`
	Note     string     `bson:"note"`
}

type shiftSnapshotDocument struct {
	Type           string `bson:"type"`
	ScheduledStart string `bson:"scheduled_start"`
	ScheduledEnd   string `bson:"scheduled_end"`
}

type attendanceDocument struct {
	ID                string                `bson:"_id"`
	EmployeeID        string                `bson:"employee_id"`
	EmployeeCode      string                `bson:"employee_code"`
	Date              time.Time             `bson:"date"`
	DayKey            string                `bson:"day_key"`
	CheckIn           checkPointDocument    `bson:"check_in"`
	CheckOut          checkPointDocument    `bson:"check_out"`
	Status            string                `bson:"status"`
	Shift             shiftSnapshotDocument `bson:"shift"`
	WorkingMinutes    int                   `bson:"working_minutes"`
	OvertimeMinutes   int                   `bson:"overtime_minutes"`
	IsLate            bool                  `bson:"is_late"`
	LateMinutes       int                   `bson:"late_minutes"`
	EarlyLeave        bool                  `bson:"early_leave"`
	EarlyLeaveMinutes int                   `bson:"early_leave_minutes"`
	Remarks           string                `bson:"remarks"`
	CreatedAt         time.Time             `bson:"created_at"`
	UpdatedAt         time.Time             `bson:"updated_at"`
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (d attendanceDocument) toEntity() attendance.Attendance {
	return attendance.Attendance{
		ID:           d.ID,
		EmployeeID:   d.EmployeeID,
		EmployeeCode: d.EmployeeCode,
		Date:         d.Date.UTC(),
		DayKey:       d.DayKey,
		CheckIn: attendance.CheckPoint{
			Time:     utcPtr(d.CheckIn.Time),
			Location: d.CheckIn.Location,
			Note:     d.CheckIn.Note,
		},
		CheckOut: attendance.CheckPoint{
			Time:     utcPtr(d.CheckOut.Time),
			Location: d.CheckOut.Location,
			Note:     d.CheckOut.Note,
		},
		Status: attendance.Status(d.Status),
		Shift: attendance.ShiftSnapshot{
			Type:           d.Shift.Type,
			ScheduledStart: d.Shift.ScheduledStart,
			ScheduledEnd:   d.Shift.ScheduledEnd,
		},
		WorkingMinutes:    d.WorkingMinutes,
		OvertimeMinutes:   d.OvertimeMinutes,
		IsLate:            d.IsLate,
		LateMinutes:       d.LateMinutes,
		EarlyLeave:        d.EarlyLeave,
		EarlyLeaveMinutes: d.EarlyLeaveMinutes,
		Remarks:           d.Remarks,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

// metricsFields are the derived values written on check-in, check-out and correction.
func metricsFields(a attendance.Attendance) bson.M {
	return bson.M{
		"status":              string(a.Status),
		"working_minutes":     a.WorkingMinutes,
		"overtime_minutes":    a.OvertimeMinutes,
		"is_late":             a.IsLate,
		"late_minutes":        a.LateMinutes,
		"early_leave":         a.EarlyLeave,
		"early_leave_minutes": a.EarlyLeaveMinutes,
	}
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// joinEmployees fills name, department and designation from the employees collection.
func joinEmployees(ctx context.Context, db *mongo.Database, docs []attendanceDocument) ([]attendance.Attendance, error) {
	records := make([]attendance.Attendance, 0, len(docs))
	if len(docs) == 0 {
		return records, nil
	}

	ids := make([]string, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.EmployeeID]; !ok {
			seen[d.EmployeeID] = struct{}{}
			ids = append(ids, d.EmployeeID)
		}
	}

	cursor, err := db.Collection(employeesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	var employees []employeeDocument
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	byID := make(map[string]employeeDocument, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	for _, d := range docs {
		a := d.toEntity()
		if e, ok := byID[d.EmployeeID]; ok {
			a.EmployeeName = e.Name
			a.EmployeeDepartment = e.Department
			a.EmployeeDesignation = e.Designation
		}
		records = append(records, a)
	}
	return records, nil
}

// employeeIDsInDepartment returns IDs of employees whose department matches dept.
func employeeIDsInDepartment(ctx context.Context, db *mongo.Database, dept string) ([]string, error) {
	cursor, err := db.Collection(employeesCollection).Find(ctx, bson.M{"department": containsFold(dept)})
	if err != nil {
		return nil, fmt.Errorf("failed to find department employees: %w", err)
	}
	var employees []employeeDocument
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}
	return ids, nil
}
