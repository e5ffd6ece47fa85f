package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vocdoni/payments-backend/migrations"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.vocdoni.io/dvote/log"
)

// defaultTimeout bounds every single query issued by the storage.
const defaultTimeout = 10 * time.Second

// MongoStorage uses an external MongoDB service for storing the user accounts.
type MongoStorage struct {
	client   *mongo.Client
	database string
	keysLock sync.RWMutex

	users      *mongo.Collection
	migrations *mongo.Collection
}

// New connects to the MongoDB server at url and brings the database
// provided up to date by applying the pending migrations. If the
// PAYMENTS_MONGO_RESET_DB environment variable is set, the whole database
// is dropped first.
func New(url, database string) (*MongoStorage, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "database", database)
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetMaxConnecting(200)
	timeout := 10 * time.Second
	opts.ConnectTimeout = &timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// check if the connection is successful
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	if reset := os.Getenv("PAYMENTS_MONGO_RESET_DB"); reset != "" {
		log.Warnw("dropping database", "database", database)
		if err := client.Database(database).Drop(ctx); err != nil {
			return nil, fmt.Errorf("cannot drop database: %w", err)
		}
	}
	ms := &MongoStorage{
		client:     client,
		database:   database,
		users:      client.Database(database).Collection(migrations.UsersCollection),
		migrations: client.Database(database).Collection(migrations.MigrationsCollection),
	}
	if err := ms.RunMigrationsUp(); err != nil {
		return nil, err
	}
	return ms, nil
}

// Close disconnects the client from the server.
func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.client.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset deletes every user. The collections, their validators and
// indexes are kept, as are the applied migration records.
func (ms *MongoStorage) Reset() error {
	log.Infof("resetting database")
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := ms.users.DeleteMany(ctx, bson.D{})
	return err
}

// Ping checks that the server is still reachable.
func (ms *MongoStorage) Ping(ctx context.Context) error {
	return ms.client.Ping(ctx, readpref.Primary())
}
