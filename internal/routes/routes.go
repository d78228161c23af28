package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/syncreg/syncreg/internal/account"
	"github.com/syncreg/syncreg/internal/captcha"
	"github.com/syncreg/syncreg/internal/config"
	"github.com/syncreg/syncreg/internal/mailer"
	"github.com/syncreg/syncreg/internal/middleware"
	"github.com/syncreg/syncreg/internal/node"
	"github.com/syncreg/syncreg/internal/resetcode"
)

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// may be nil in development mode, in which case in-memory backends are used.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return errors.New("database is required outside development")
		}
		if d.Cache == nil {
			return errors.New("redis is required outside development")
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var store account.CredentialStore
	if d.DB != nil {
		store = account.NewPostgresStore(d.DB)
	} else {
		store = account.NewMemoryStore()
	}

	policy := resetcode.Policy{TTL: d.Cfg.ResetCodeTTL, ResendWindow: d.Cfg.ResetResendWindow}
	var codes resetcode.Manager
	if d.Cache != nil {
		codes = resetcode.NewRedisManager(d.Cache, policy)
	} else {
		codes = resetcode.NewMemoryManager(policy)
	}

	var locator node.Locator
	if d.DB != nil {
		locator = node.NewPostgresLocator(d.DB)
	}

	var verifier captcha.Verifier
	if d.Cfg.CaptchaEnabled {
		verifier = captcha.NewRecaptchaVerifier(d.Cfg.CaptchaVerifyURL,
			d.Cfg.CaptchaPrivateKey, d.Cfg.OutboundTimeout)
	}

	var sender mailer.Sender
	switch {
	case d.Cfg.ResendAPIKey != "":
		sender = mailer.NewResendSender(d.Cfg.ResendAPIKey)
	case d.Cfg.SMTPHost != "":
		sender = mailer.NewSMTPSender(d.Cfg.SMTPHost, d.Cfg.SMTPPort,
			d.Cfg.SMTPUser, d.Cfg.SMTPPassword)
	default:
		sender = mailer.NewLoggerSender(d.Logger)
	}

	svc := account.NewService(d.Cfg, store, codes, locator, verifier, sender, d.Logger)

	ownerAuth := middleware.BasicAuth(store)
	resetLimiter := middleware.ResetRateLimit(d.Cache, 5)

	RegisterUserRoutes(app, svc, ownerAuth, resetLimiter)
	RegisterResetFormRoutes(app, svc)

	return nil
}

// sendError translates a service error into the wire representation: numeric
// protocol codes as JSON integers where one exists, plain text otherwise.
func sendError(c *fiber.Ctx, err error) error {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, account.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, account.ErrBackendUnavailable),
		errors.Is(err, account.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, account.ErrCreationFailed),
		errors.Is(err, account.ErrUpdateFailed),
		errors.Is(err, account.ErrDeletionFailed):
		status = http.StatusInternalServerError
	}

	if code := account.WireCode(err); code != 0 {
		return c.Status(status).JSON(code)
	}
	return c.Status(status).SendString(err.Error())
}
