// Package mailer provides SMTP-based dispatch for invitation
// notifications.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/fransouzacb/fenafar-plataforma/pkg/config"
	"github.com/google/uuid"
)

// Mailer sends notification e-mails and returns a message id usable for
// correlation.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a mailer for the given relay configuration.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send dispatches one message and returns its message id.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) (string, error) {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	messageID := fmt.Sprintf("<%s@fenafar>", uuid.New().String())

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMessage-ID: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.cfg.From, to, subject, messageID, body)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return "", err
	}
	return messageID, nil
}
