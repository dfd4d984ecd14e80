package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultSendGridBaseURL = "https://api.sendgrid.com"
	sendGridMailEndpoint   = "/v3/mail/send"
)

// SendGridConfig holds the provider credentials and sender identity
type SendGridConfig struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// SendGridMailer delivers messages through the SendGrid v3 mail/send API
type SendGridMailer struct {
	config SendGridConfig
	logger *slog.Logger
}

// StatusError is returned for non-2xx provider responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sendgrid responded with status %d: %s", e.StatusCode, e.Body)
}

func NewSendGridMailer(config SendGridConfig, logger *slog.Logger) *SendGridMailer {
	if config.BaseURL == "" {
		config.BaseURL = DefaultSendGridBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &SendGridMailer{
		config: config,
		logger: logger,
	}
}

// Send delivers msg once. Cc addresses equal to the recipient are dropped, SendGrid
// rejects duplicates within a personalization.
func (s *SendGridMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(s.config.APIKey, sendGridMailEndpoint, strings.TrimRight(s.config.BaseURL, "/"))
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(s.buildMail(msg))

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to call sendgrid: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("SendGrid rejected message",
			"status", resp.StatusCode,
			"to", msg.To,
			"subject", msg.Subject)
		return &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	s.logger.Info("Email sent",
		"to", msg.To,
		"cc_count", len(msg.Cc),
		"subject", msg.Subject)
	return nil
}

func (s *SendGridMailer) buildMail(msg *Message) *mail.SGMailV3 {
	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", msg.To))
	p.Subject = msg.Subject

	seen := map[string]bool{strings.ToLower(msg.To): true}
	for _, cc := range msg.Cc {
		key := strings.ToLower(strings.TrimSpace(cc))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		p.AddCCs(mail.NewEmail("", strings.TrimSpace(cc)))
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.config.FromName, s.config.FromEmail))
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", msg.HTMLBody))
	return m
}
