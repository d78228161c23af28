package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
}

// NewSMTPSender builds an SMTP-backed sender. User and password may be empty
// for an open relay.
func NewSMTPSender(host string, port int, user, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, password: password}
}

// Send performs a synchronous SMTP transaction. The context deadline, if any,
// is honoured before dialing; net/smtp itself does not support cancellation
// mid-transaction.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	payload := buildMessage(msg)
	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func buildMessage(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

var _ Sender = (*SMTPSender)(nil)
