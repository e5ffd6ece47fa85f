package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	AddMigration(2, "users_email_index", upUsersEmailIndex, downUsersEmailIndex)
}

const usersEmailIndexName = "email_1"

func usersEmailIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName(usersEmailIndexName).SetUnique(true),
	}
}

func upUsersEmailIndex(ctx context.Context, database *mongo.Database) error {
	if _, err := database.Collection(UsersCollection).Indexes().CreateOne(ctx, usersEmailIndex()); err != nil {
		return fmt.Errorf("failed to create index on email for users: %w", err)
	}
	return nil
}

func downUsersEmailIndex(ctx context.Context, database *mongo.Database) error {
	return replaceIndexWithUpdateFunc(ctx, database.Collection(UsersCollection),
		[]string{usersEmailIndexName}, nil, nil)
}
