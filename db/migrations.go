package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vocdoni/payments-backend/migrations"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.vocdoni.io/dvote/log"
)

const migrationsTimeout = 5 * time.Minute

// MigrationRecord is stored once per applied migration.
type MigrationRecord struct {
	Version   int       `bson:"version"`
	Name      string    `bson:"name"`
	AppliedAt time.Time `bson:"appliedAt"`
}

// RunMigrationsUp applies, in order, every registered migration newer than
// the last one recorded in the database.
func (ms *MongoStorage) RunMigrationsUp() error {
	ctx, cancel := context.WithTimeout(context.Background(), migrationsTimeout)
	defer cancel()

	last, err := lastAppliedMigration(ctx, ms.migrations)
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}
	migs := migrations.SortedByVersionAsc()
	if len(migs) == 0 || migs[len(migs)-1].Version <= last {
		log.Debugw("database is up to date", "version", last)
		return nil
	}
	log.Infow("migrating database", "database", ms.database, "from", last, "to", migs[len(migs)-1].Version)

	for _, mig := range migs {
		if mig.Version <= last {
			continue
		}
		if err := mig.Up(ctx, ms.client.Database(ms.database)); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		record := MigrationRecord{Version: mig.Version, Name: mig.Name, AppliedAt: time.Now().UTC()}
		if _, err := ms.migrations.InsertOne(ctx, record); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", mig.Version, err)
		}
		log.Infow("migration applied", "version", mig.Version, "name", mig.Name)
	}
	return nil
}

// RunMigrationsDown reverts the last steps applied migrations. A
// non-positive steps reverts all of them.
func (ms *MongoStorage) RunMigrationsDown(steps int) error {
	ctx, cancel := context.WithTimeout(context.Background(), migrationsTimeout)
	defer cancel()

	applied, err := appliedMigrations(ctx, ms.migrations)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if steps <= 0 || steps > len(applied) {
		steps = len(applied)
	}
	registry := migrations.AsMap()
	for _, record := range applied[:steps] {
		mig, ok := registry[record.Version]
		if !ok {
			return fmt.Errorf("migration %d not found in registry", record.Version)
		}
		if err := mig.Down(ctx, ms.client.Database(ms.database)); err != nil {
			return fmt.Errorf("failed to roll back migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		if _, err := ms.migrations.DeleteOne(ctx, bson.M{"version": record.Version}); err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", record.Version, err)
		}
		log.Infow("migration rolled back", "version", mig.Version, "name", mig.Name)
	}
	return nil
}

// MigrationVersion returns the version of the last applied migration, or 0
// if none was applied.
func (ms *MongoStorage) MigrationVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return lastAppliedMigration(ctx, ms.migrations)
}

func lastAppliedMigration(ctx context.Context, collection *mongo.Collection) (int, error) {
	migs, err := appliedMigrations(ctx, collection)
	if err != nil {
		return 0, err
	}
	if len(migs) == 0 {
		return 0, nil
	}
	return migs[0].Version, nil
}

// appliedMigrations returns the migration records, newest first.
func appliedMigrations(ctx context.Context, collection *mongo.Collection) ([]MigrationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			log.Warnw("error closing cursor", "error", err)
		}
	}()
	var migs []MigrationRecord
	if err := cursor.All(ctx, &migs); err != nil {
		return nil, fmt.Errorf("failed to decode migrations: %w", err)
	}
	return migs, nil
}
