package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/payments-backend/db"
	"github.com/vocdoni/payments-backend/internal"
)

// memoryDB is an in-memory db.Database used to test the handlers without
// a MongoDB server.
type memoryDB struct {
	mu      sync.RWMutex
	users   map[string]db.User
	failing bool
}

var _ db.Database = (*memoryDB)(nil)

func newMemoryDB() *memoryDB {
	return &memoryDB{users: make(map[string]db.User)}
}

// setFailing makes every following user operation fail.
func (m *memoryDB) setFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (*memoryDB) Close() {}

func (m *memoryDB) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]db.User)
	m.failing = false
	return nil
}

func (*memoryDB) Ping(context.Context) error { return nil }

func (m *memoryDB) CreateUser(user *db.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return "", fmt.Errorf("database unavailable")
	}
	if user == nil || user.Password == "" {
		return "", db.ErrInvalidData
	}
	user.Email = db.NormalizeEmail(user.Email)
	if !internal.ValidEmail(user.Email) {
		return "", db.ErrInvalidData
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return "", db.ErrAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.ID] = *user
	return user.ID, nil
}

func (m *memoryDB) User(id string) (*db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return nil, fmt.Errorf("database unavailable")
	}
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (m *memoryDB) UserByEmail(email string) (*db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return nil, fmt.Errorf("database unavailable")
	}
	email = db.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memoryDB) DelUser(user *db.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil || (user.ID == "" && user.Email == "") {
		return db.ErrInvalidData
	}
	for id, u := range m.users {
		if id == user.ID || (user.ID == "" && u.Email == db.NormalizeEmail(user.Email)) {
			delete(m.users, id)
		}
	}
	return nil
}
