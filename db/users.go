package db

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/payments-backend/internal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (ms *MongoStorage) fetchUser(ctx context.Context, filter bson.M) (*User, error) {
	user := &User{}
	if err := ms.users.FindOne(ctx, filter).Decode(user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// User method returns the user with the given ID. If the user doesn't exist, it
// returns ErrNotFound.
func (ms *MongoStorage) User(id string) (*User, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.fetchUser(ctx, bson.M{"_id": id})
}

// UserByEmail method returns the user with the given email, compared case
// insensitively. If the user doesn't exist, it returns ErrNotFound.
func (ms *MongoStorage) UserByEmail(email string) (*User, error) {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.fetchUser(ctx, bson.M{"email": NormalizeEmail(email)})
}

// CreateUser method stores a new user. The email is normalised, a new UUID
// is assigned when the user has no ID and the creation time is set when
// missing. It returns the ID of the user created, ErrInvalidData if the
// user is not valid or ErrAlreadyExists if the email is already registered.
func (ms *MongoStorage) CreateUser(user *User) (string, error) {
	if user == nil || user.Password == "" {
		return "", ErrInvalidData
	}
	user.Email = NormalizeEmail(user.Email)
	if !internal.ValidEmail(user.Email) || len(user.Name) > internal.MaxNameLength {
		return "", ErrInvalidData
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if _, err := ms.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrAlreadyExists
		}
		return "", err
	}
	return user.ID, nil
}

// DelUser method deletes the user from the database, looking it up by ID
// or, if the ID is empty, by email.
func (ms *MongoStorage) DelUser(user *User) error {
	if user == nil || (user.ID == "" && user.Email == "") {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	filter := bson.M{"_id": user.ID}
	if user.ID == "" {
		filter = bson.M{"email": NormalizeEmail(user.Email)}
	}
	_, err := ms.users.DeleteOne(ctx, filter)
	return err
}

// NormalizeEmail returns the email trimmed and lower-cased, the form in
// which emails are stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
