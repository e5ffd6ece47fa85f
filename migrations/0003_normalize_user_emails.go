package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.vocdoni.io/dvote/log"
)

func init() {
	AddMigration(3, "normalize_user_emails", upNormalizeUserEmails, downNormalizeUserEmails)
}

// upNormalizeUserEmails lower-cases the stored emails so that lookups and
// the unique index ignore case. The unique index is rebuilt after the
// update, so two accounts differing only in case make the migration fail
// instead of silently merging them.
func upNormalizeUserEmails(ctx context.Context, database *mongo.Database) error {
	users := database.Collection(UsersCollection)
	lowerCase := func() error {
		filter := bson.M{"email": bson.M{"$regex": "[A-Z]"}}
		update := mongo.Pipeline{
			{{Key: "$set", Value: bson.D{{Key: "email", Value: bson.D{{Key: "$toLower", Value: "$email"}}}}}},
		}
		res, err := users.UpdateMany(ctx, filter, update)
		if err != nil {
			return fmt.Errorf("failed to lower-case user emails: %w", err)
		}
		if res.ModifiedCount > 0 {
			log.Infow("normalized user emails", "count", res.ModifiedCount)
		}
		return nil
	}
	return replaceIndexWithUpdateFunc(ctx, users,
		[]string{usersEmailIndexName},
		[]mongo.IndexModel{usersEmailIndex()},
		lowerCase)
}

// the original casing is not kept anywhere, nothing to revert
func downNormalizeUserEmails(context.Context, *mongo.Database) error {
	return nil
}
