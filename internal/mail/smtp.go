// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the transport settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the envelope sender address.
	From string
}

// SMTPMailer delivers rendered messages through an SMTP relay.
//
// # Reliability
//
// One connection, one attempt, no retry queue. Callers choose how failure
// is handled through their [SendPolicy]; the mailer itself never swallows
// an error.
type SMTPMailer struct {
	client  *gomail.Client
	from    string
	product Product
	logger  *slog.Logger
}

// NewSMTPMailer constructs a mailer from transport config and branding.
func NewSMTPMailer(cfg SMTPConfig, product Product, logger *slog.Logger) (*SMTPMailer, error) {
	options := []gomail.Option{
		gomail.WithPort(cfg.Port),
		// Upgrade to TLS when the relay offers it; local dev relays
		// (Mailtrap, MailHog) frequently don't.
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}

	if cfg.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, options...)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to create smtp client: %w", err)
	}

	return &SMTPMailer{
		client:  client,
		from:    cfg.From,
		product: product,
		logger:  logger,
	}, nil
}

// Send renders the message and delivers it in a single SMTP transaction.
func (mailer *SMTPMailer) Send(ctx context.Context, message Message) error {
	html, text, err := Render(mailer.product, message.Content)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(mailer.from); err != nil {
		return fmt.Errorf("mail: invalid sender address %q: %w", mailer.from, err)
	}
	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("mail: invalid recipient address %q: %w", message.To, err)
	}

	msg.Subject(message.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, text)
	msg.AddAlternativeString(gomail.TypeTextHTML, html)

	if err := mailer.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: failed to send to %s: %w", message.To, err)
	}

	mailer.logger.InfoContext(ctx, "email_sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
	)

	return nil
}
