// Package mailer delivers the membership service's outbound email.
//
// Delivery is a best-effort collaborator: Send never panics and reports the
// outcome in a Delivery value so callers can decide whether a failure is fatal
// (invitations) or only worth logging (welcome mail).
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRecipient   = errors.New("mailer: message has no recipient")
	ErrUnknownDriver = errors.New("mailer: unknown driver")
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

// Delivery is the outcome of a Send.
type Delivery struct {
	Delivered bool
	Err       error
}

func delivered() Delivery { return Delivery{Delivered: true} }

func failed(err error) Delivery { return Delivery{Err: err} }

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) Delivery
}

// Config selects and configures a Sender.
type Config struct {
	Driver string // log, smtp, resend
	From   string

	ResendAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// New builds the Sender named by cfg.Driver.
func New(cfg Config) (Sender, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "log":
		return NewLogSender(), nil
	case "resend":
		return NewResendSender(cfg.ResendAPIKey, cfg.From)
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
