package mailer

import (
	"context"
	"log/slog"
)

// LoggerSender is a stub implementation that writes messages to the logger
// instead of delivering them. Used in development mode.
type LoggerSender struct {
	logger *slog.Logger
}

// NewLoggerSender constructs a logging sender stub.
func NewLoggerSender(logger *slog.Logger) *LoggerSender {
	return &LoggerSender{logger: logger}
}

// Send writes the message to the structured logger.
func (s *LoggerSender) Send(_ context.Context, msg Message) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("mail", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
