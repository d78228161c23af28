package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.ResetCodeTTL != 6*time.Hour {
		t.Fatalf("expected default reset TTL, got %s", cfg.ResetCodeTTL)
	}
	if cfg.ResetResendWindow != 15*time.Minute {
		t.Fatalf("expected default resend window, got %s", cfg.ResetResendWindow)
	}
	if cfg.OutboundTimeout != 5*time.Second {
		t.Fatalf("expected default outbound timeout, got %s", cfg.OutboundTimeout)
	}
}

func TestLoadDurations(t *testing.T) {
	t.Setenv("RESET_CODE_TTL", "1h30m")
	t.Setenv("RESET_RESEND_WINDOW_SECONDS", "600")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ResetCodeTTL != 90*time.Minute {
		t.Fatalf("ttl = %s", cfg.ResetCodeTTL)
	}
	if cfg.ResetResendWindow != 10*time.Minute {
		t.Fatalf("resend window = %s", cfg.ResetResendWindow)
	}
}

func TestLoadRejectsResendWindowOverTTL(t *testing.T) {
	t.Setenv("RESET_CODE_TTL", "10m")
	t.Setenv("RESET_RESEND_WINDOW", "1h")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for resend window exceeding TTL")
	}
}

func TestLoadRequiresCaptchaKey(t *testing.T) {
	t.Setenv("CAPTCHA_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for captcha without private key")
	}
}

func TestLoadRequiresBackendsOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing DATABASE_URL in production")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/syncreg")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing REDIS_URL in production")
	}
}

func TestAddress(t *testing.T) {
	if got := (Config{Port: "9000"}).Address(); got != ":9000" {
		t.Fatalf("Address() = %q", got)
	}
	if got := (Config{Port: ":9000"}).Address(); got != ":9000" {
		t.Fatalf("Address() = %q", got)
	}
}
