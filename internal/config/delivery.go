package config

import (
	"log/slog"

	"github.com/cultivated-hq/pulse-service/internal/delivery"
)

type DeliveryConfig struct {
	SendGridAPIKey  string
	SendGridBaseURL string
	FromEmail       string
	FromName        string
	// CCEmail is copied on audit result emails
	CCEmail string
	// AdminEmail is copied on session reports
	AdminEmail string
}

// MinimalMode reports whether email delivery is switched off
func (c *DeliveryConfig) MinimalMode() bool {
	return c.SendGridAPIKey == ""
}

// CreateMailer returns a SendGrid mailer, or a disabled one without an API key
func (c *DeliveryConfig) CreateMailer(logger *slog.Logger) delivery.Mailer {
	if c.MinimalMode() {
		logger.Warn("SENDGRID_API_KEY not set, running in minimal mode without email delivery")
		return delivery.DisabledMailer{Logger: logger}
	}

	logger.Info("Creating SendGrid mailer", "from", c.FromEmail)
	return delivery.NewSendGridMailer(delivery.SendGridConfig{
		APIKey:    c.SendGridAPIKey,
		BaseURL:   c.SendGridBaseURL,
		FromEmail: c.FromEmail,
		FromName:  c.FromName,
	}, logger)
}
