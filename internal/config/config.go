package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "SyncReg"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultResetCodeTTL    = 6 * time.Hour
	defaultResendWindow    = 15 * time.Minute
	defaultOutboundTimeout = 5 * time.Second
	defaultSMTPPort        = 25
	defaultCaptchaVerify   = "http://www.google.com/recaptcha/api/verify"

	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	resetTTLSecondsEnvVar  = "RESET_CODE_TTL_SECONDS"
	resetTTLDurEnvVar      = "RESET_CODE_TTL"
	resendSecondsEnvVar    = "RESET_RESEND_WINDOW_SECONDS"
	resendDurEnvVar        = "RESET_RESEND_WINDOW"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration

	// PublicHost is the externally visible base URL of this service. It is
	// substituted into reset emails and serves as the node sentinel when no
	// fallback node is configured.
	PublicHost string

	StrictUsernames bool
	SharedSecret    string
	FallbackNodeURL string

	CaptchaEnabled    bool
	CaptchaPrivateKey string
	CaptchaVerifyURL  string

	ResetCodeTTL      time.Duration
	ResetResendWindow time.Duration

	MailSender   string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	// OutboundTimeout bounds every captcha, mail and locator round trip.
	OutboundTimeout time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ShutdownPeriod: defaultShutdownDelay,

		PublicHost: getEnv("PUBLIC_HOST", "http://localhost:8080"),

		StrictUsernames: getBool("STRICT_USERNAMES", false),
		SharedSecret:    os.Getenv("SHARED_SECRET"),
		FallbackNodeURL: os.Getenv("FALLBACK_NODE_URL"),

		CaptchaEnabled:    getBool("CAPTCHA_ENABLED", false),
		CaptchaPrivateKey: os.Getenv("CAPTCHA_PRIVATE_KEY"),
		CaptchaVerifyURL:  getEnv("CAPTCHA_VERIFY_URL", defaultCaptchaVerify),

		ResetCodeTTL:      defaultResetCodeTTL,
		ResetResendWindow: defaultResendWindow,

		MailSender:   getEnv("MAIL_SENDER", "no-reply@localhost"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     defaultSMTPPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		OutboundTimeout: defaultOutboundTimeout,
	}

	var err error
	if cfg.ShutdownPeriod, err = getDuration(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.ResetCodeTTL, err = getDuration(resetTTLSecondsEnvVar, resetTTLDurEnvVar, cfg.ResetCodeTTL); err != nil {
		return Config{}, err
	}
	if cfg.ResetResendWindow, err = getDuration(resendSecondsEnvVar, resendDurEnvVar, cfg.ResetResendWindow); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
	}

	if v := os.Getenv("OUTBOUND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OUTBOUND_TIMEOUT: %w", err)
		}
		cfg.OutboundTimeout = d
	}

	if cfg.CaptchaEnabled && cfg.CaptchaPrivateKey == "" {
		return Config{}, fmt.Errorf("CAPTCHA_PRIVATE_KEY must be set when CAPTCHA_ENABLED=true")
	}

	if cfg.ResetResendWindow > cfg.ResetCodeTTL {
		return Config{}, fmt.Errorf("RESET_RESEND_WINDOW must not exceed RESET_CODE_TTL")
	}

	if !isDev(cfg.AppEnv) {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the configured environment is a development one.
func (c Config) IsDev() bool {
	return isDev(c.AppEnv)
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(secondsVar, durationVar string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return fallback, nil
}
