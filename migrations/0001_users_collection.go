package migrations

import (
	"context"

	"github.com/vocdoni/payments-backend/internal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	AddMigration(1, "users_collection", upUsersCollection, downUsersCollection)
}

var usersCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "email", "password", "createdAt"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":    "string",
				"description": "must be a string and is required",
				"minLength":   1,
			},
			"name": bson.M{
				"bsonType":    "string",
				"description": "must be a string",
				"maxLength":   internal.MaxNameLength,
			},
			"email": bson.M{
				"bsonType":    "string",
				"description": "must be an email and is required",
				"pattern":     internal.EmailRegexTemplate,
			},
			"password": bson.M{
				"bsonType":    "string",
				"description": "must be a password hash and is required",
				"minLength":   8,
			},
			"createdAt": bson.M{
				"bsonType":    "date",
				"description": "must be a date and is required",
			},
		},
	},
}

func upUsersCollection(ctx context.Context, database *mongo.Database) error {
	return ensureCollection(ctx, database, UsersCollection, usersCollectionValidator)
}

// dropping the users would lose every account, and the up func is
// idempotent anyway
func downUsersCollection(context.Context, *mongo.Database) error {
	return nil
}
