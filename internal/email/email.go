package email

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/01moynul/tenantdesk-golang/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is one outgoing email. HTML is optional.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// --- Log mailer ---

// LogMailer writes messages to the log instead of sending them. Used when no mail API key
// is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: logger.OrNop(log)}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("Email (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}

// --- Resend ---

const DefaultResendURL = "https://api.resend.com"

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resty.Client
	from   string
	log    *zap.Logger
}

func NewResendMailer(baseURL, apiKey, from string, log *zap.Logger) *ResendMailer {
	if baseURL == "" {
		baseURL = DefaultResendURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		AddRetryCondition(retryable).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ResendMailer{client: client, from: from, log: logger.OrNop(log)}
}

// retryable covers transport failures, rate limiting and server errors. Retries are safe
// because every attempt of one Send carries the same Idempotency-Key.
func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && (resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500)
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	var result resendResponse
	var apiErr resendError
	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(resendRequest{From: m.from, To: []string{msg.To}, Subject: msg.Subject, Text: msg.Text, HTML: msg.HTML}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		m.log.Error("Resend API call failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("failed to call Resend API: %w", err)
	}
	if resp.IsError() {
		m.log.Error("Resend API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("name", apiErr.Name),
			zap.String("msg", apiErr.Message),
		)
		return fmt.Errorf("Resend API error: %s (status: %d)", apiErr.Message, resp.StatusCode())
	}

	m.log.Info("Email sent", zap.String("to", msg.To), zap.String("id", result.ID))
	return nil
}

// SendOTPEmail mails a login code.
func SendOTPEmail(ctx context.Context, m Mailer, to, code string, ttl time.Duration) error {
	return m.Send(ctx, Message{
		To:      to,
		Subject: "Your tenantdesk login code",
		Text:    fmt.Sprintf("Your login code is: %s\n\nThis code will expire in %d minutes.", code, int(ttl.Minutes())),
		HTML:    fmt.Sprintf("<p>Your login code is: <strong>%s</strong></p><p>This code will expire in %d minutes.</p>", code, int(ttl.Minutes())),
	})
}
