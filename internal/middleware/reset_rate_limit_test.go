package middleware

import (
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestResetRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Get("/user/1.0/:username/password_reset", ResetRateLimit(cache, 2), func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/user/1.0/alice/password_reset", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/user/1.0/alice/password_reset", nil))
	if err != nil {
		t.Fatalf("limited request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", resp.StatusCode)
	}

	// limits are per username
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/user/1.0/bob/password_reset", nil))
	if err != nil {
		t.Fatalf("other user: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected other user unaffected, got %d", resp.StatusCode)
	}
}

func TestResetRateLimitWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Get("/user/1.0/:username/password_reset", ResetRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/user/1.0/alice/password_reset", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected no-op without redis, got %d", resp.StatusCode)
		}
	}
}
