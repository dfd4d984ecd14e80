package delivery

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// ErrDeliveryDisabled is returned when no email provider is configured
var ErrDeliveryDisabled = errors.New("email delivery is disabled")

// Message is a single HTML email
type Message struct {
	To       string
	Cc       []string
	Subject  string
	HTMLBody string
}

// Validate checks the fields every provider needs
func (m *Message) Validate() error {
	if m == nil {
		return errors.New("message is nil")
	}
	if strings.TrimSpace(m.To) == "" {
		return errors.New("message has no recipient")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("message has no subject")
	}
	if m.HTMLBody == "" {
		return errors.New("message has no body")
	}
	return nil
}

// Mailer sends a rendered report. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// DisabledMailer rejects every message with ErrDeliveryDisabled
type DisabledMailer struct {
	Logger *slog.Logger
}

func (d DisabledMailer) Send(ctx context.Context, msg *Message) error {
	if d.Logger != nil && msg != nil {
		d.Logger.Warn("Email delivery disabled, message not sent",
			"to", msg.To,
			"subject", msg.Subject)
	}
	return ErrDeliveryDisabled
}

// MockMailer records messages in memory
type MockMailer struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{Messages: make([]Message, 0)}
}

// Send records msg, or returns Err when set
func (m *MockMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, *msg)
	return nil
}

// Sent returns a copy of the recorded messages
func (m *MockMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.Messages))
	copy(out, m.Messages)
	return out
}

// Reset clears recorded messages and the configured error
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Messages = make([]Message, 0)
	m.Err = nil
}
