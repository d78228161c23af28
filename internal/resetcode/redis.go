package resetcode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const codePrefix = "resetcode:v1:"

// codeBytes yields 26 base32 characters, comfortably unguessable.
const codeBytes = 16

// RedisManager stores pending codes in Redis, one key per username, with the
// TTL enforcing expiry. Redis serializes commands per key, which gives the
// per-user ordering the account service relies on.
type RedisManager struct {
	client *redis.Client
	policy Policy
}

// NewRedisManager builds a Redis-backed manager with the given policy.
func NewRedisManager(client *redis.Client, policy Policy) *RedisManager {
	return &RedisManager{client: client, policy: policy}
}

// Generate mints a new pending code unless one was issued within the resend
// window.
func (m *RedisManager) Generate(ctx context.Context, username string) (string, error) {
	key := codeKey(username)

	remaining, err := m.client.TTL(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if remaining > 0 && m.policy.TTL-remaining < m.policy.ResendWindow {
		return "", ErrAlreadyIssued
	}

	code, err := newCode()
	if err != nil {
		return "", err
	}
	if err := m.client.Set(ctx, key, code, m.policy.TTL).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return code, nil
}

// Verify compares the pending code in constant time. Expired or absent codes
// simply fail to match; an incorrect attempt never consumes the code.
func (m *RedisManager) Verify(ctx context.Context, username, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	stored, err := m.client.Get(ctx, codeKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

// Clear removes the pending code, if any.
func (m *RedisManager) Clear(ctx context.Context, username string) error {
	if err := m.client.Del(ctx, codeKey(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func codeKey(username string) string {
	return codePrefix + username
}

func newCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

var _ Manager = (*RedisManager)(nil)
