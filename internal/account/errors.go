package account

import "errors"

// Validation and policy failures detected locally. Handlers map each one to a
// stable status and wire code, so the set is deliberately fine-grained.
var (
	ErrMissingUsername       = errors.New("username not provided")
	ErrInvalidUser           = errors.New("invalid user")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAlreadyExists         = errors.New("account already exists")
	ErrNoEmailAddress        = errors.New("no email address on file")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrUsernameEmailMismatch = errors.New("username does not match email")
	ErrMissingPassword       = errors.New("password not provided")
	ErrWeakPassword          = errors.New("password too weak")
	ErrPasswordMismatch      = errors.New("password and confirmation do not match")
	ErrInvalidCaptcha        = errors.New("invalid captcha")
	ErrInvalidResetCode      = errors.New("invalid reset code")
	ErrUnauthorized          = errors.New("unauthorized")
)

// Backend operation failures. These carry the underlying diagnostic via
// wrapping; callers match with errors.Is.
var (
	ErrCreationFailed = errors.New("user creation failed")
	ErrUpdateFailed   = errors.New("user update failed")
	ErrDeletionFailed = errors.New("user deletion failed")
)

// Dependency reachability failures. Never retried here; retry policy belongs
// to the calling layer or the dependency's own client.
var (
	ErrBackendUnavailable = errors.New("credential backend unavailable")
	ErrServiceUnavailable = errors.New("service unavailable")
)
