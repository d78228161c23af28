package account

import "errors"

// Numeric response codes from the sync user protocol. Error bodies carry one
// of these as a bare JSON integer so existing clients can keep their
// error-code switch statements.
const (
	WireIllegalMethod       = 1
	WireInvalidCaptcha      = 2
	WireInvalidUsername     = 3
	WireInvalidWrite        = 4
	WireUserIDMismatch      = 5
	WireMalformedJSON       = 6
	WireMissingPassword     = 7
	WireInvalidWBO          = 8
	WireWeakPassword        = 9
	WireInvalidResetCode    = 10
	WireUnsupportedFunction = 11
	WireNoEmail             = 12
	WireInvalidCollection   = 13
	WireOverQuota           = 14
)

// WireCode returns the protocol code for err, or 0 when the error has no
// numeric representation and should be reported as plain text instead.
func WireCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCaptcha):
		return WireInvalidCaptcha
	case errors.Is(err, ErrMissingUsername),
		errors.Is(err, ErrInvalidUser),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrUsernameEmailMismatch):
		return WireInvalidUsername
	case errors.Is(err, ErrAlreadyExists):
		return WireInvalidWrite
	case errors.Is(err, ErrMissingPassword):
		return WireMissingPassword
	case errors.Is(err, ErrWeakPassword):
		return WireWeakPassword
	case errors.Is(err, ErrInvalidResetCode):
		return WireInvalidResetCode
	case errors.Is(err, ErrNoEmailAddress), errors.Is(err, ErrInvalidEmail):
		return WireNoEmail
	default:
		return 0
	}
}
