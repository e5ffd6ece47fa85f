package migrations

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestRegistry(t *testing.T) {
	c := qt.New(t)

	migs := SortedByVersionAsc()
	c.Assert(len(migs) > 0, qt.IsTrue)
	for i, mig := range migs {
		c.Assert(mig.Version, qt.Equals, i+1, qt.Commentf("migration %s", mig.Name))
		c.Assert(mig.Up, qt.IsNotNil)
		c.Assert(mig.Down, qt.IsNotNil)
	}
	c.Assert(AsMap(), qt.HasLen, len(migs))

	noop := func(context.Context, *mongo.Database) error { return nil }
	c.Assert(func() { AddMigration(1, "duplicated", noop, noop) }, qt.PanicMatches, "migration 1 registered twice")
	c.Assert(func() { AddMigration(1000, "incomplete", noop, nil) }, qt.PanicMatches, ".*needs both up and down.*")

	AddMigration(1000, "extra", noop, noop)
	c.Assert(SortedByVersionAsc()[len(migs)].Version, qt.Equals, 1000)
	DelMigration(1000)
	c.Assert(SortedByVersionAsc(), qt.HasLen, len(migs))
}
