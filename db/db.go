package db

import "context"

// Database is the storage used by the API to manage user accounts.
// MongoStorage is the production implementation.
type Database interface {
	// basic db management operations
	Close()
	Reset() error
	Ping(context.Context) error
	// user methods
	CreateUser(*User) (string, error)
	User(id string) (*User, error)
	UserByEmail(email string) (*User, error)
	DelUser(*User) error
}

var _ Database = (*MongoStorage)(nil)
