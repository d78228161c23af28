package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/syncreg/syncreg/internal/captcha"
	"github.com/syncreg/syncreg/internal/config"
	"github.com/syncreg/syncreg/internal/mailer"
	"github.com/syncreg/syncreg/internal/node"
	"github.com/syncreg/syncreg/internal/resetcode"
)

// Service orchestrates the account lifecycle and the password-reset workflow
// over the external collaborators. It holds no authoritative state of its
// own; the credential store and the reset-code manager are the systems of
// record, and every operation re-queries them.
//
// The reset-code manager and the node locator are optional. A nil manager
// makes reset operations fail with ErrServiceUnavailable; a nil locator makes
// node resolution fall back to the configured static node.
type Service struct {
	cfg      config.Config
	store    CredentialStore
	codes    resetcode.Manager
	locator  node.Locator
	verifier captcha.Verifier
	mail     mailer.Sender
	logger   *slog.Logger
}

// NewService builds the account service. store, mail and logger are required;
// codes, locator and verifier may be nil depending on deployment.
func NewService(cfg config.Config, store CredentialStore, codes resetcode.Manager,
	locator node.Locator, verifier captcha.Verifier, mail mailer.Sender,
	logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		codes:    codes,
		locator:  locator,
		verifier: verifier,
		mail:     mail,
		logger:   logger,
	}
}

// Exists reports whether an account with the given username is registered.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	cctx, cancel := s.outbound(ctx)
	defer cancel()

	id, err := s.store.GetUserID(cctx, username)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return id != "", nil
}

// ResolveNode returns the storage-node URL for an existing user. A locator
// miss or failure degrades to the configured fallback node; with no fallback
// configured the public host acts as the sentinel. Either way the fallback is
// a success, not an error.
func (s *Service) ResolveNode(ctx context.Context, username string) (string, error) {
	cctx, cancel := s.outbound(ctx)
	defer cancel()

	id, err := s.store.GetUserID(cctx, username)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if id == "" {
		return "", ErrAccountNotFound
	}

	if s.locator != nil {
		url, err := s.locator.GetBestNode(cctx, node.ServiceSync, username)
		if err == nil && url != "" {
			return url, nil
		}
		if err != nil && !errors.Is(err, node.ErrNoNodeAvailable) {
			s.logger.Warn("node locator failed, using fallback",
				slog.String("username", username), slog.Any("error", err))
		}
	}

	if s.cfg.FallbackNodeURL != "" {
		return s.cfg.FallbackNodeURL, nil
	}
	return strings.TrimSuffix(s.cfg.PublicHost, "/") + "/", nil
}

// RequestPasswordReset generates a reset code for the user and emails it to
// the registered address. When the manager reports a recently issued pending
// code the call succeeds without sending a second email.
func (s *Service) RequestPasswordReset(ctx context.Context, username string, proof CaptchaProof) error {
	cctx, cancel := s.outbound(ctx)
	defer cancel()

	id, err := s.store.GetUserID(cctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if id == "" {
		return ErrInvalidUser
	}

	info, err := s.store.GetUserInfo(cctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if info.Email == "" {
		return ErrNoEmailAddress
	}

	if err := s.checkCaptcha(ctx, proof); err != nil {
		return err
	}

	if s.codes == nil {
		return fmt.Errorf("%w: no reset-code backend configured", ErrServiceUnavailable)
	}

	code, err := s.codes.Generate(cctx, username)
	if errors.Is(err, resetcode.ErrAlreadyIssued) {
		s.logger.Info("reset code already issued, not re-sending",
			slog.String("username", username))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	body, err := mailer.RenderResetMail(mailer.ResetMailData{
		Host:     strings.TrimSuffix(s.cfg.PublicHost, "/"),
		Username: username,
		Code:     code,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	mctx, mcancel := s.outbound(ctx)
	defer mcancel()
	msg := mailer.Message{
		From:    s.cfg.MailSender,
		To:      info.Email,
		Subject: mailer.ResetMailSubject,
		Body:    body,
	}
	if err := s.mail.Send(mctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	s.logger.Info("reset mail sent", slog.String("username", username))
	return nil
}

// CancelPasswordReset clears any pending reset code for the user. Clearing
// with nothing pending is still a success.
func (s *Service) CancelPasswordReset(ctx context.Context, username string, proof CaptchaProof) error {
	if err := s.checkCaptcha(ctx, proof); err != nil {
		return err
	}
	if s.codes == nil {
		return fmt.Errorf("%w: no reset-code backend configured", ErrServiceUnavailable)
	}

	cctx, cancel := s.outbound(ctx)
	defer cancel()
	if err := s.codes.Clear(cctx, username); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	s.logger.Info("password reset cancelled", slog.String("username", username))
	return nil
}

// RedeemPasswordReset exchanges a valid reset code for a new password.
//
// Checks run in a fixed order and the first violated one determines the
// returned error; the reset form relies on that ordering to show the most
// relevant message.
func (s *Service) RedeemPasswordReset(ctx context.Context, username, code, newPassword, confirm string) error {
	if username == "" {
		return ErrMissingUsername
	}

	cctx, cancel := s.outbound(ctx)
	defer cancel()

	id, err := s.store.GetUserID(cctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if id == "" {
		return ErrAccountNotFound
	}

	if newPassword == "" {
		return ErrMissingPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if !ValidPassword(username, newPassword) {
		return ErrWeakPassword
	}

	if s.codes == nil {
		return fmt.Errorf("%w: no reset-code backend configured", ErrServiceUnavailable)
	}
	ok, err := s.codes.Verify(cctx, username, code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if !ok {
		return ErrInvalidResetCode
	}

	updated, err := s.store.AdminUpdatePassword(cctx, id, newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	if !updated {
		return ErrUpdateFailed
	}

	// the password is already updated at this point; a failed clear only
	// leaves the code pending until its TTL runs out
	if err := s.codes.Clear(cctx, username); err != nil {
		s.logger.Warn("clearing consumed reset code failed",
			slog.String("username", username), slog.Any("error", err))
	}

	s.logger.Info("password reset completed", slog.String("username", username))
	return nil
}

// CreateAccount registers a new user and returns the username.
func (s *Service) CreateAccount(ctx context.Context, acc NewAccount) (string, error) {
	exists, err := s.Exists(ctx, acc.Username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrAlreadyExists
	}

	if acc.Email != "" && !ValidEmail(acc.Email) {
		return "", ErrInvalidEmail
	}
	if s.cfg.StrictUsernames && acc.Email != "" && ExtractUsername(acc.Email) != acc.Username {
		return "", ErrUsernameEmailMismatch
	}
	if acc.Password == "" {
		return "", ErrMissingPassword
	}
	if !ValidPassword(acc.Username, acc.Password) {
		return "", ErrWeakPassword
	}

	if err := s.checkCaptcha(ctx, acc.Proof); err != nil {
		return "", err
	}

	cctx, cancel := s.outbound(ctx)
	defer cancel()
	created, err := s.store.CreateUser(cctx, acc.Username, acc.Password, acc.Email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}
	if !created {
		// lost a race with a concurrent create
		return "", ErrAlreadyExists
	}

	s.logger.Info("account created", slog.String("username", acc.Username))
	return acc.Username, nil
}

// ChangeEmail updates the registered email address. The current password is a
// precondition supplied by the caller's authentication layer; the store
// verifies it once more as part of the update.
func (s *Service) ChangeEmail(ctx context.Context, username, currentPassword, newEmail string) (string, error) {
	if !ValidEmail(newEmail) {
		return "", ErrInvalidEmail
	}
	if currentPassword == "" {
		return "", ErrUnauthorized
	}

	cctx, cancel := s.outbound(ctx)
	defer cancel()

	id, err := s.store.GetUserID(cctx, username)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if id == "" {
		return "", ErrAccountNotFound
	}

	updated, err := s.store.UpdateField(cctx, id, currentPassword, "email", newEmail)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	if !updated {
		return "", ErrUpdateFailed
	}
	return newEmail, nil
}

// ChangePassword sets a new password. With a reset code the update is
// administrative after the code verifies; otherwise the store performs a
// classical verify-then-update against the current password.
func (s *Service) ChangePassword(ctx context.Context, username, currentPassword, resetCode, newPassword string) error {
	cctx, cancel := s.outbound(ctx)
	defer cancel()

	id, err := s.store.GetUserID(cctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if id == "" {
		return ErrAccountNotFound
	}

	if !ValidPassword(username, newPassword) {
		return ErrWeakPassword
	}

	if resetCode != "" {
		if s.codes == nil {
			return fmt.Errorf("%w: no reset-code backend configured", ErrServiceUnavailable)
		}
		ok, err := s.codes.Verify(cctx, username, resetCode)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		if !ok {
			return ErrInvalidResetCode
		}
		updated, err := s.store.AdminUpdatePassword(cctx, id, newPassword)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
		}
		if !updated {
			return ErrUpdateFailed
		}
		if err := s.codes.Clear(cctx, username); err != nil {
			s.logger.Warn("clearing consumed reset code failed",
				slog.String("username", username), slog.Any("error", err))
		}
		return nil
	}

	if currentPassword == "" {
		return ErrUnauthorized
	}
	updated, err := s.store.UpdatePassword(cctx, id, currentPassword, newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	if !updated {
		return ErrUnauthorized
	}
	return nil
}

// DeleteAccount removes the account. The backend's false means "not deleted"
// and is returned as such; only a thrown backend failure is an error.
func (s *Service) DeleteAccount(ctx context.Context, username, currentPassword string) (bool, error) {
	if currentPassword == "" {
		return false, ErrUnauthorized
	}

	cctx, cancel := s.outbound(ctx)
	defer cancel()

	id, err := s.store.GetUserID(cctx, username)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if id == "" {
		return false, ErrAccountNotFound
	}

	deleted, err := s.store.DeleteUser(cctx, id, currentPassword)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDeletionFailed, err)
	}
	if deleted {
		s.logger.Info("account deleted", slog.String("username", username))
	}
	return deleted, nil
}

func (s *Service) checkCaptcha(ctx context.Context, proof CaptchaProof) error {
	if !s.cfg.CaptchaEnabled {
		return nil
	}
	if s.cfg.SharedSecret != "" && proof.Secret != "" &&
		subtle.ConstantTimeCompare([]byte(proof.Secret), []byte(s.cfg.SharedSecret)) == 1 {
		return nil
	}
	if proof.Challenge == "" || proof.Response == "" {
		return ErrInvalidCaptcha
	}
	if s.verifier == nil {
		return fmt.Errorf("%w: no captcha verifier configured", ErrServiceUnavailable)
	}

	cctx, cancel := s.outbound(ctx)
	defer cancel()
	ok, err := s.verifier.Verify(cctx, proof.Challenge, proof.Response, proof.RemoteIP)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if !ok {
		return ErrInvalidCaptcha
	}
	return nil
}

// outbound bounds a dependency round trip with the configured timeout.
func (s *Service) outbound(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.OutboundTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
