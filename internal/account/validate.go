package account

import "strings"

const minPasswordLength = 8

// ValidEmail reports whether addr looks like a deliverable address: non-empty,
// exactly one @, and a domain part containing a dot.
func ValidEmail(addr string) bool {
	if addr == "" {
		return false
	}
	at := strings.Index(addr, "@")
	if at <= 0 || at != strings.LastIndex(addr, "@") {
		return false
	}
	domain := addr[at+1:]
	dot := strings.Index(domain, ".")
	// a leading or trailing dot is not a valid domain
	return dot > 0 && dot < len(domain)-1
}

// ValidPassword enforces the baseline strength policy: at least eight
// characters and not equal to the username, compared case-insensitively.
func ValidPassword(username, password string) bool {
	if len(password) < minPasswordLength {
		return false
	}
	return !strings.EqualFold(username, password)
}

// ExtractUsername derives the canonical username from an email address: the
// local part, lowercased and filtered to [a-z0-9._-]. The same mapping backs
// the strict-username match check at account creation.
func ExtractUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	local = strings.ToLower(local)

	var b strings.Builder
	b.Grow(len(local))
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
