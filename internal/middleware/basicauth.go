package middleware

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/syncreg/syncreg/internal/account"
)

const (
	// LocalUsername and LocalPassword hold the verified credentials for
	// downstream handlers that re-present the password to the store.
	LocalUsername = "auth_username"
	LocalPassword = "auth_password"

	authRealm = `Basic realm="Sync"`
)

// BasicAuth verifies HTTP Basic credentials against the credential store and
// requires the authenticated user to own the :username path segment.
func BasicAuth(store account.CredentialStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, pass, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return challenge(c)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		id, err := store.Authenticate(ctx, user, pass)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "authentication backend unavailable")
		}
		if id == "" {
			return challenge(c)
		}

		// owner check: authenticated identity must match the resource path
		if owner := c.Params("username"); owner != "" && owner != user {
			return fiber.NewError(fiber.StatusUnauthorized, "not resource owner")
		}

		c.Locals(LocalUsername, user)
		c.Locals(LocalPassword, pass)
		return c.Next()
	}
}

func challenge(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, authRealm)
	return c.SendStatus(fiber.StatusUnauthorized)
}

func parseBasicAuth(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	user, pass, ok = strings.Cut(string(decoded), ":")
	return user, pass, ok
}
