package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memoryUser struct {
	User
	passwordHash []byte
}

type memoryStore struct {
	mu    sync.RWMutex
	users map[string]*memoryUser // keyed by username
}

// NewMemoryStore builds an in-memory credential store used in development
// mode and in tests.
func NewMemoryStore() CredentialStore {
	return &memoryStore{users: make(map[string]*memoryUser)}
}

func (s *memoryStore) GetUserID(_ context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[username]; ok {
		return u.ID, nil
	}
	return "", nil
}

func (s *memoryStore) GetUserInfo(_ context.Context, userID string) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.byID(userID); u != nil {
		return Info{Username: u.Username, Email: u.Email}, nil
	}
	return Info{}, nil
}

func (s *memoryStore) Authenticate(_ context.Context, username, password string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return "", nil
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return "", nil
	}
	return u.ID, nil
}

func (s *memoryStore) CreateUser(_ context.Context, username, password, email string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return false, nil
	}
	s.users[username] = &memoryUser{
		User: User{
			ID:        uuid.New().String(),
			Username:  username,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		},
		passwordHash: hash,
	}
	return true, nil
}

func (s *memoryStore) UpdateField(_ context.Context, userID, authPassword, field, value string) (bool, error) {
	if field != "email" {
		return false, fmt.Errorf("unknown user field %q", field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byID(userID)
	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(authPassword)) != nil {
		return false, nil
	}
	u.Email = value
	return true, nil
}

func (s *memoryStore) UpdatePassword(_ context.Context, userID, authPassword, newPassword string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byID(userID)
	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(authPassword)) != nil {
		return false, nil
	}
	return s.rehash(u, newPassword)
}

func (s *memoryStore) AdminUpdatePassword(_ context.Context, userID, newPassword string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byID(userID)
	if u == nil {
		return false, nil
	}
	return s.rehash(u, newPassword)
}

func (s *memoryStore) DeleteUser(_ context.Context, userID, authPassword string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byID(userID)
	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(authPassword)) != nil {
		return false, nil
	}
	delete(s.users, u.Username)
	return true, nil
}

func (s *memoryStore) rehash(u *memoryUser, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return false, err
	}
	u.passwordHash = hash
	return true, nil
}

// byID assumes the caller holds the lock.
func (s *memoryStore) byID(userID string) *memoryUser {
	for _, u := range s.users {
		if u.ID == userID {
			return u
		}
	}
	return nil
}
