// Package migrations keeps the ordered list of schema changes applied to the
// payments MongoDB database. Each migration registers itself from an init
// function in its own numbered file.
package migrations

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// UsersCollection holds the accounts of the users of the service.
	UsersCollection = "users"
	// MigrationsCollection holds one record per applied migration.
	MigrationsCollection = "migrations"
)

// MigrationFunc applies or reverts a schema change on the database provided.
type MigrationFunc func(ctx context.Context, database *mongo.Database) error

// Migration is a versioned schema change.
type Migration struct {
	Version int
	Name    string
	Up      MigrationFunc
	Down    MigrationFunc
}

var registry = make(map[int]Migration)

// AddMigration registers a migration. It panics if the version is already
// taken or any of the functions is missing, since that is a programming
// error that must never reach a database.
func AddMigration(version int, name string, up, down MigrationFunc) {
	if _, ok := registry[version]; ok {
		panic(fmt.Sprintf("migration %d registered twice", version))
	}
	if up == nil || down == nil {
		panic(fmt.Sprintf("migration %d (%s) needs both up and down functions", version, name))
	}
	registry[version] = Migration{
		Version: version,
		Name:    name,
		Up:      up,
		Down:    down,
	}
}

// DelMigration removes a migration from the registry.
func DelMigration(version int) { delete(registry, version) }

// SortedByVersionAsc returns the registered migrations, oldest first.
func SortedByVersionAsc() []Migration {
	migs := make([]Migration, 0, len(registry))
	for _, mig := range registry {
		migs = append(migs, mig)
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	return migs
}

// AsMap returns a copy of the registry indexed by version.
func AsMap() map[int]Migration {
	return maps.Clone(registry)
}
