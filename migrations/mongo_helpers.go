package migrations

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.vocdoni.io/dvote/log"
)

// listCollectionsInDB returns the names of the collections in database.
func listCollectionsInDB(ctx context.Context, database *mongo.Database) ([]string, error) {
	cursor, err := database.ListCollections(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			log.Warnw("failed to close collections cursor", "error", err)
		}
	}()
	collections := []bson.D{}
	if err := cursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	names := []string{}
	for _, col := range collections {
		for _, v := range col {
			if v.Key != "name" {
				continue
			}
			if name, ok := v.Value.(string); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// ensureCollection creates the collection with the validator provided, or
// updates the validator of the collection if it already exists.
func ensureCollection(ctx context.Context, database *mongo.Database, name string, validator bson.M) error {
	current, err := listCollectionsInDB(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if slices.Contains(current, name) {
		if validator == nil {
			return nil
		}
		err := database.RunCommand(ctx, bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
			{Key: "validationLevel", Value: "strict"},
			{Key: "validationAction", Value: "error"},
		}).Err()
		if err != nil {
			return fmt.Errorf("failed to update validator of %s: %w", name, err)
		}
		return nil
	}
	opts := options.CreateCollection()
	if validator != nil {
		opts = opts.SetValidator(validator).SetValidationLevel("strict").SetValidationAction("error")
	}
	if err := database.CreateCollection(ctx, name, opts); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// replaceIndexWithUpdateFunc drops oldIndexes, runs updateFunc (if any)
// and creates newIndexes. Missing old indexes are ignored so the operation
// can be repeated.
func replaceIndexWithUpdateFunc(
	ctx context.Context,
	collection *mongo.Collection,
	oldIndexes []string,
	newIndexes []mongo.IndexModel,
	updateFunc func() error,
) error {
	for _, name := range oldIndexes {
		if _, err := collection.Indexes().DropOne(ctx, name); err != nil {
			if strings.Contains(err.Error(), "IndexNotFound") || strings.Contains(err.Error(), "index not found") {
				continue
			}
			return fmt.Errorf("failed to drop index %s of %s: %w", name, collection.Name(), err)
		}
	}
	if updateFunc != nil {
		if err := updateFunc(); err != nil {
			return err
		}
	}
	for _, index := range newIndexes {
		if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
			return fmt.Errorf("failed to create index %v on %s: %w", index.Keys, collection.Name(), err)
		}
	}
	return nil
}
