// Package test provides testing utilities for the payments backend,
// including test containers for MongoDB and Redis and a stand-in for the
// Stripe API.
package test

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// MongoPort is the port exposed by the MongoDB test container.
	MongoPort = "27017/tcp"
	// RedisPort is the port exposed by the Redis test container.
	RedisPort = "6379/tcp"
)

// StartMongoContainer starts a MongoDB container for testing. Use
// container.Endpoint(ctx, "mongodb") to get the connection URI.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				ExposedPorts: []string{MongoPort},
				WaitingFor: wait.ForAll(
					wait.ForLog("Waiting for connections"),
					wait.ForListeningPort(nat.Port(MongoPort)),
				),
			},
			Started: true,
		})
}

// StartRedisContainer starts a Redis container for testing. Use
// container.Endpoint(ctx, "redis") to get the connection URL.
func StartRedisContainer(ctx context.Context) (testcontainers.Container, error) {
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{RedisPort},
				WaitingFor: wait.ForAll(
					wait.ForLog("Ready to accept connections"),
					wait.ForListeningPort(nat.Port(RedisPort)),
				),
			},
			Started: true,
		})
}

// RandomDatabaseName returns a database name unique enough to isolate the
// tests sharing a MongoDB container.
func RandomDatabaseName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return fmt.Sprintf("db-%x", b)
}
