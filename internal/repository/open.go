// Package repository selects the storage backend named by DB_DRIVER and
// returns the repository ports the services depend on.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
)

type Repositories struct {
	Employees   employee.EmployeeRepository
	Attendances attendance.AttendanceRepository
	Reports     report.ReportRepository

	// Postgres is set only for the postgres driver.
	Postgres *database.DB

	close func(ctx context.Context) error
}

// Close releases the backend connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// Open connects to the configured backend and prepares its schema or indexes.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("connected to postgres", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return &Repositories{
			Employees:   postgresql.NewEmployeeRepository(db),
			Attendances: postgresql.NewAttendanceRepository(db),
			Reports:     postgresql.NewReportRepository(db),
			Postgres:    db,
			close: func(context.Context) error {
				db.Close()
				return nil
			},
		}, nil

	case config.DriverMongo:
		m, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, m.Database); err != nil {
			_ = m.Close(ctx)
			return nil, err
		}
		slog.Info("connected to mongodb", "database", cfg.Mongo.Database)
		return &Repositories{
			Employees:   mongodb.NewEmployeeRepository(m.Database),
			Attendances: mongodb.NewAttendanceRepository(m.Database),
			Reports:     mongodb.NewReportRepository(m.Database),
			close:       m.Close,
		}, nil

	case config.DriverMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &Repositories{
			Employees:   memory.NewEmployeeRepository(store),
			Attendances: memory.NewAttendanceRepository(store),
			Reports:     memory.NewReportRepository(store),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
}
