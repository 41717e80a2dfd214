package notification

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a provider client whose credentials are
// absent. This is a normal outcome, not an exceptional one: the affected
// channel reports failure while the other channel proceeds.
var ErrNotConfigured = errors.New("provider not configured")

// EmailMessage is a fully rendered email ready for delivery.
type EmailMessage struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	FromName    string
	FromAddress string
	ReplyTo     string
}

// SMSMessage is a fully rendered SMS ready for delivery.
type SMSMessage struct {
	To   string
	Body string
}

// EmailSender delivers rendered emails. Implementations live in infra/email.
type EmailSender interface {
	// Send delivers the message and returns the provider's message id.
	// Transport failures are returned as error values, never panics.
	Send(ctx context.Context, msg *EmailMessage) (string, error)
}

// SMSSender delivers rendered SMS messages. Implementations live in
// infra/sms and are responsible for destination number normalization.
type SMSSender interface {
	Send(ctx context.Context, msg *SMSMessage) (string, error)
}

// Renderer substitutes placeholder variables and evaluates conditional
// blocks in a template fragment. Implementations live in internal/template.
type Renderer interface {
	Render(tpl string, data Data) string
}
