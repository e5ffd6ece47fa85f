package db

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/payments-backend/migrations"
	"github.com/vocdoni/payments-backend/test"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMigrations(t *testing.T) {
	c := qt.New(t)
	migs := migrations.SortedByVersionAsc()
	lastVersion := migs[len(migs)-1].Version

	version, err := testDB.MigrationVersion()
	c.Assert(err, qt.IsNil)
	c.Assert(version, qt.Equals, lastVersion)

	c.Run("Idempotency", func(c *qt.C) {
		c.Assert(testDB.RunMigrationsUp(), qt.IsNil)
		version, err := testDB.MigrationVersion()
		c.Assert(err, qt.IsNil)
		c.Assert(version, qt.Equals, lastVersion)

		// forgetting every record makes all of them run again on top of
		// an up to date database
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		c.Assert(testDB.migrations.Drop(ctx), qt.IsNil)
		ms, err := New(mongoURI, testDB.database)
		c.Assert(err, qt.IsNil)
		defer ms.Close()
		version, err = ms.MigrationVersion()
		c.Assert(err, qt.IsNil)
		c.Assert(version, qt.Equals, lastVersion)
	})

	c.Run("NormalizeEmails", func(c *qt.C) {
		c.Assert(testDB.RunMigrationsDown(1), qt.IsNil)
		version, err := testDB.MigrationVersion()
		c.Assert(err, qt.IsNil)
		c.Assert(version, qt.Equals, lastVersion-1)

		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_, err = testDB.users.InsertOne(ctx, bson.M{
			"_id":       "legacy-user",
			"email":     "Legacy.User@Example.COM",
			"password":  "$2a$10$legacyhashlegacyhash",
			"createdAt": time.Now(),
		})
		c.Assert(err, qt.IsNil)

		c.Assert(testDB.RunMigrationsUp(), qt.IsNil)
		user, err := testDB.User("legacy-user")
		c.Assert(err, qt.IsNil)
		c.Assert(user.Email, qt.Equals, "legacy.user@example.com")
		c.Assert(testDB.DelUser(user), qt.IsNil)
	})

	c.Run("UpAndDown", func(c *qt.C) {
		migrations.AddMigration(lastVersion+1, "test_migration", upTestCollection, downTestCollection)
		defer migrations.DelMigration(lastVersion + 1)

		c.Assert(testDB.RunMigrationsUp(), qt.IsNil)
		names, err := testDB.client.Database(testDB.database).ListCollectionNames(context.Background(), bson.M{"name": "test_migration"})
		c.Assert(err, qt.IsNil)
		c.Assert(names, qt.HasLen, 1)

		c.Assert(testDB.RunMigrationsDown(1), qt.IsNil)
		names, err = testDB.client.Database(testDB.database).ListCollectionNames(context.Background(), bson.M{"name": "test_migration"})
		c.Assert(err, qt.IsNil)
		c.Assert(names, qt.HasLen, 0)
		version, err := testDB.MigrationVersion()
		c.Assert(err, qt.IsNil)
		c.Assert(version, qt.Equals, lastVersion)
	})
}

func TestNewWithReset(t *testing.T) {
	c := qt.New(t)
	database := test.RandomDatabaseName()

	ms, err := New(mongoURI, database)
	c.Assert(err, qt.IsNil)
	_, err = ms.CreateUser(&User{Email: "reset@example.com", Password: "$2a$10$somehashsomehash"})
	c.Assert(err, qt.IsNil)
	ms.Close()

	t.Setenv("PAYMENTS_MONGO_RESET_DB", "1")
	ms, err = New(mongoURI, database)
	c.Assert(err, qt.IsNil)
	defer ms.Close()
	_, err = ms.UserByEmail("reset@example.com")
	c.Assert(err, qt.Equals, ErrNotFound)
	// the schema is back after the drop
	_, err = ms.CreateUser(&User{Email: "reset@example.com", Password: "$2a$10$somehashsomehash"})
	c.Assert(err, qt.IsNil)
	_, err = ms.CreateUser(&User{Email: "RESET@example.com", Password: "$2a$10$somehashsomehash"})
	c.Assert(err, qt.Equals, ErrAlreadyExists)
}

func upTestCollection(ctx context.Context, database *mongo.Database) error {
	return database.CreateCollection(ctx, "test_migration")
}

func downTestCollection(ctx context.Context, database *mongo.Database) error {
	return database.Collection("test_migration").Drop(ctx)
}
