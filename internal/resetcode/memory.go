package resetcode

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type pendingCode struct {
	code     string
	issuedAt time.Time
}

type memoryManager struct {
	mu     sync.Mutex
	codes  map[string]pendingCode
	policy Policy
	now    func() time.Time
}

// NewMemoryManager builds an in-memory manager used in development mode and
// in tests.
func NewMemoryManager(policy Policy) Manager {
	return &memoryManager{
		codes:  make(map[string]pendingCode),
		policy: policy,
		now:    time.Now,
	}
}

func (m *memoryManager) Generate(_ context.Context, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if pending, ok := m.codes[username]; ok {
		age := now.Sub(pending.issuedAt)
		if age < m.policy.ResendWindow && age < m.policy.TTL {
			return "", ErrAlreadyIssued
		}
	}

	code, err := newCode()
	if err != nil {
		return "", err
	}
	m.codes[username] = pendingCode{code: code, issuedAt: now}
	return code, nil
}

func (m *memoryManager) Verify(_ context.Context, username, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	pending, ok := m.codes[username]
	if !ok {
		return false, nil
	}
	if m.now().Sub(pending.issuedAt) >= m.policy.TTL {
		delete(m.codes, username)
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(pending.code), []byte(code)) == 1, nil
}

func (m *memoryManager) Clear(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, username)
	return nil
}
