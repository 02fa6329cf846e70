// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package email delivers verification messages over SMTP. Delivery is an
// external collaborator of the token lifecycle: the caller dispatches it
// after issuance, the manager itself never sends anything.
package email

import (
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"codeberg.org/mtheiner/accountkit/internal/config"
)

// Service sends verification mails via SMTP using go-mail.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates an email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// VerificationURL builds the link embedding an opaque token.
func (s *Service) VerificationURL(opaqueToken string) string {
	return fmt.Sprintf("%s/verify?token=%s", s.baseURL, opaqueToken)
}

// SendShortCode mails the human-typeable code.
func (s *Service) SendShortCode(toEmail, code string) error {
	body := fmt.Sprintf("Your verification code is %s.\n\nIt expires shortly; enter it where you requested it.\n", code)
	return s.send(toEmail, "Your verification code", body)
}

// SendVerificationLink mails the link carrying the opaque token.
func (s *Service) SendVerificationLink(toEmail, opaqueToken string) error {
	body := fmt.Sprintf("Confirm your email address by opening:\n\n%s\n", s.VerificationURL(opaqueToken))
	return s.send(toEmail, "Confirm your email address", body)
}

// SendPasswordReset mails a reset link carrying the opaque token.
func (s *Service) SendPasswordReset(toEmail, opaqueToken string) error {
	body := fmt.Sprintf("Reset your password by opening:\n\n%s/reset?token=%s\n", s.baseURL, opaqueToken)
	return s.send(toEmail, "Reset your password", body)
}

// send delivers a plain-text message via SMTP.
func (s *Service) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
