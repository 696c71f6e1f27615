package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type employeeRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) employee.EmployeeRepository {
	return &employeeRepository{db: db, coll: db.Collection(employeesCollection)}
}

func (r *employeeRepository) findOne(ctx context.Context, filter bson.M) (employee.Employee, error) {
	var doc employeeDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *employeeRepository) findMany(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]employee.Employee, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	employees := make([]employee.Employee, 0, len(docs))
	for _, d := range docs {
		employees = append(employees, d.toEntity())
	}
	return employees, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	newEmployee.CreatedAt = now
	newEmployee.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toEmployeeDocument(newEmployee)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "email") {
				return employee.Employee{}, employee.ErrEmailExists
			}
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return newEmployee, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail implements employee.EmployeeRepository.
func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (r *employeeRepository) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	return r.findOne(ctx, bson.M{"employee_code": employeeCode})
}

// ExistsByCodeOrEmail implements employee.EmployeeRepository.
func (r *employeeRepository) ExistsByCodeOrEmail(ctx context.Context, employeeCode, email string) (bool, bool, error) {
	codeCount, err := r.coll.CountDocuments(ctx, bson.M{"employee_code": employeeCode}, options.Count().SetLimit(1))
	if err != nil {
		return false, false, fmt.Errorf("failed to check employee code: %w", err)
	}
	emailCount, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, false, fmt.Errorf("failed to check email: %w", err)
	}
	return codeCount > 0, emailCount > 0, nil
}

func (r *employeeRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if res.MatchedCount == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	return r.updateByID(ctx, e.ID, bson.M{
		"name":        e.Name,
		"department":  e.Department,
		"designation": e.Designation,
		"phone":       e.Phone,
		"role":        string(e.Role),
		"shift": shiftDocument{
			Type:      string(e.Shift.Type),
			StartTime: e.Shift.StartTime,
			EndTime:   e.Shift.EndTime,
		},
		"status": string(e.Status),
	})
}

// UpdatePassword implements employee.EmployeeRepository.
func (r *employeeRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"password_hash": passwordHash})
}

// UpdateStatus implements employee.EmployeeRepository.
func (r *employeeRepository) UpdateStatus(ctx context.Context, id string, status employee.LifecycleStatus) error {
	return r.updateByID(ctx, id, bson.M{"status": string(status)})
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	query := bson.M{}
	if filter.Department != nil && *filter.Department != "" {
		query["department"] = containsFold(*filter.Department)
	}
	if filter.Status != nil {
		switch *filter.Status {
		case "active":
			query["status"] = string(employee.StatusActive)
		case "inactive":
			query["status"] = bson.M{"$ne": string(employee.StatusActive)}
		}
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		pattern := containsFold(strings.TrimSpace(*filter.Search))
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"employee_code": pattern},
			bson.M{"email": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	employees, err := r.findMany(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(ctx context.Context, role employee.Role) ([]employee.Employee, error) {
	employees, err := r.findMany(ctx,
		bson.M{"status": string(employee.StatusActive), "role": string(role)},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return employees, nil
}

// ListDepartments implements employee.EmployeeRepository.
func (r *employeeRepository) ListDepartments(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "department", bson.M{"department": bson.M{"$ne": ""}})
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	departments := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			departments = append(departments, s)
		}
	}
	sort.Strings(departments)
	return departments, nil
}
