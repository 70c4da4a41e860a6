package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendConfig carries the Resend API settings
type ResendConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ResendSender delivers emails through the Resend HTTP API
type ResendSender struct {
	config     *ResendConfig
	httpClient *http.Client
	logger     coreport.Logger
}

// NewResendSender creates a Resend-backed email sender
func NewResendSender(config *ResendConfig, logger coreport.Logger) *ResendSender {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultResendBaseURL
	}
	return &ResendSender{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type resendRequestBody struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers the message through Resend
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if s.config.APIKey == "" {
		return errs.ErrEmailNotConfigured
	}

	payload, err := json.Marshal(resendRequestBody{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Email delivery request failed", map[string]any{
			"subject": msg.Subject,
			"error":   err.Error(),
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Error("Email provider rejected message", map[string]any{
			"subject": msg.Subject,
			"status":  resp.StatusCode,
			"body":    string(body),
		})
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	s.logger.Info("Email sent", map[string]any{
		"subject": msg.Subject,
		"to":      msg.To,
	})
	return nil
}

var _ Sender = (*ResendSender)(nil)
