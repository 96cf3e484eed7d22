// Package mailer builds MIME notification messages and delivers them over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// NewMessage converts a notification into a go-mail message with an optional attachment.
func NewMessage(email *models.NotificationEmail) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if email.From != "" {
		if err := m.From(email.From); err != nil {
			return nil, fmt.Errorf("failed to set from: %w", err)
		}
	}
	if err := m.To(email.To...); err != nil {
		return nil, fmt.Errorf("failed to set to: %w", err)
	}
	m.Subject(email.Subject)
	m.SetBodyString(gomail.TypeTextPlain, email.Body)

	if a := email.Attachment; a != nil {
		err := m.AttachReader(a.Name, bytes.NewReader(a.Content),
			gomail.WithFileContentType(gomail.ContentType(a.MIMEType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	return m, nil
}

// Render returns the RFC 5322 form of email.
func Render(email *models.NotificationEmail) ([]byte, error) {
	m, err := NewMessage(email)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render message: %w", err)
	}
	return buf.Bytes(), nil
}

// SMTPSender delivers notifications through an SMTP relay.
type SMTPSender struct {
	client *gomail.Client
}

// NewSMTPSender creates an SMTP client from cfg. Authentication is used when a password is set.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	tlsPolicy := gomail.TLSOpportunistic
	if cfg.UseTLS {
		tlsPolicy = gomail.TLSMandatory
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(tlsPolicy),
	}
	if cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

// Send dials the relay and delivers email.
func (s *SMTPSender) Send(ctx context.Context, email *models.NotificationEmail) error {
	m, err := NewMessage(email)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	slog.Info("Email sent.", "to", email.To, "subject", email.Subject)
	return nil
}
