// Package notify delivers code emails. The service treats delivery as an
// opaque collaborator: it hands over a rendered Message and gets back a
// provider message id.
package notify

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

var ErrInvalidMessage = errors.New("invalid email message")

// Message is a rendered email ready to send.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string

	// IdempotencyKey lets the provider drop duplicate sends on retry.
	IdempotencyKey string
}

// Sender delivers a Message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Validate checks the fields every provider needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" || strings.TrimSpace(m.Subject) == "" {
		return ErrInvalidMessage
	}
	if m.HTML == "" && m.Text == "" {
		return ErrInvalidMessage
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return errors.Join(ErrInvalidMessage, err)
	}
	return nil
}
