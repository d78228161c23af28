package account

import "time"

// User represents a registered sync account as stored by the credential
// backend. The password itself never appears here; only its hash lives in the
// store and the core passes candidate passwords through opaquely.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// Info is the subset of user fields the reset workflow needs.
type Info struct {
	Username string
	Email    string
}

// CaptchaProof carries the captcha fields submitted with an unauthenticated
// request, plus the optional pre-shared secret that bypasses captcha for
// trusted server-to-server provisioning.
type CaptchaProof struct {
	Challenge string
	Response  string
	RemoteIP  string
	Secret    string
}

// NewAccount captures the data required to create an account.
type NewAccount struct {
	Username string
	Email    string
	Password string
	Proof    CaptchaProof
}
