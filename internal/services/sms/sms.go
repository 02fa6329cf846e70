// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package sms delivers short codes through an HTTP SMS gateway. Like email,
// it is an external collaborator dispatched by the caller, never by the
// token manager.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/mtheiner/accountkit/internal/config"
)

// Service posts messages to the configured gateway. With no gateway URL it
// runs dry: messages are logged, not sent.
type Service struct {
	cfg    *config.SMSConfig
	client *http.Client
}

// NewService creates an SMS service.
func NewService(cfg *config.SMSConfig) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayResponse struct {
	Code int `json:"code"`
	Data struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// SendShortCode delivers the verification code to a phone number.
func (s *Service) SendShortCode(ctx context.Context, to, code string) error {
	if s.cfg.GatewayURL == "" || s.cfg.APIKey == "" {
		slog.Info("sms_dry_run", "to", to)
		return nil
	}

	form := url.Values{
		"apiKey":    {s.cfg.APIKey},
		"recipient": {to},
		"text":      {fmt.Sprintf("Your verification code is %s", code)},
	}
	if s.cfg.From != "" {
		form.Set("from", s.cfg.From)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read SMS response: %w", err)
	}

	var result gatewayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse SMS response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("SMS gateway returned error code %d", result.Code)
	}

	slog.Info("sms_sent", "to", to, "message_id", result.Data.MessageID)
	return nil
}
