// Package resetcode issues and verifies single-use password-reset codes.
//
// A code is pending from the moment it is generated until it is consumed,
// cleared or expires. Generating a new code replaces any pending one, except
// inside the resend window, where Generate reports ErrAlreadyIssued so the
// caller can skip sending a duplicate email.
package resetcode

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAlreadyIssued means a pending code was issued recently enough that
	// a new one should not be generated. Callers treat it as a no-op
	// success, not a failure.
	ErrAlreadyIssued = errors.New("reset code already issued")

	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("reset code store unavailable")
)

// Manager owns reset-code state for every user: at most one pending code per
// username at any moment. Implementations serialize concurrent generation and
// verification for the same user.
type Manager interface {
	// Generate creates and persists a new pending code, invalidating any
	// previous one. Returns ErrAlreadyIssued inside the resend window.
	Generate(ctx context.Context, username string) (string, error)

	// Verify reports whether a pending unexpired code matches exactly.
	// A failed attempt has no side effect on the stored code.
	Verify(ctx context.Context, username, code string) (bool, error)

	// Clear removes any pending code. Clearing when none is pending is
	// not an error.
	Clear(ctx context.Context, username string) error
}

// Policy bundles the TTL knobs shared by Manager implementations.
type Policy struct {
	// TTL is how long a generated code stays valid.
	TTL time.Duration

	// ResendWindow is the period after generation during which Generate
	// reports ErrAlreadyIssued instead of minting a replacement.
	ResendWindow time.Duration
}
