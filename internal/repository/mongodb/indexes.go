package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(employeesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("employee_code_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys: bson.D{{Key: "department", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create employee indexes: %w", err)
	}

	_, err = db.Collection(attendancesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "day_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("employee_day_unique"),
		},
		{
			Keys: bson.D{{Key: "day_key", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create attendance indexes: %w", err)
	}

	return nil
}
