package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ResetRateLimit limits password-reset requests per username (falling back to
// the client IP) using Redis if available. This throttles both mail volume
// and reset-code guessing.
func ResetRateLimit(cache *redis.Client, maxPerHour int) fiber.Handler {
	if maxPerHour <= 0 {
		maxPerHour = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		subject := c.Params("username")
		if subject == "" {
			subject = c.IP()
		}
		key := "rl:reset:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Hour)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerHour) {
			return fiber.NewError(http.StatusTooManyRequests, "too many reset requests, try again later")
		}
		return c.Next()
	}
}
