// Package mailer delivers transactional email for the account workflows.
package mailer

import "context"

// Message describes a single outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers messages through an external transport. Implementations do
// not retry; retry policy belongs to the transport or the calling layer.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
