package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Session events
	EventSessionCreated       EventType = "session.created"
	EventSessionPublicCreated EventType = "session.public_created"
	EventResponseSubmitted    EventType = "response.submitted"

	// Report events
	EventReportSent   EventType = "report.sent"
	EventReportFailed EventType = "report.failed"

	// Audit events
	EventAuditSubmitted EventType = "audit.submitted"
)

const (
	eventSource  = "pulse-service"
	eventVersion = "1.0"
)

// ReportKind distinguishes the two report pipelines in report events
type ReportKind string

const (
	ReportKindSession ReportKind = "session"
	ReportKindAudit   ReportKind = "audit"
)

// NotificationEvent is the envelope shared by every published event
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionCreatedEvent struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	ManagerName  string    `json:"manager_name"`
	ManagerEmail string    `json:"manager_email"`
	ScaleType    string    `json:"scale_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	SurveyURL    string    `json:"survey_url,omitempty"`
}

type ResponseSubmittedEvent struct {
	SessionID     string    `json:"session_id"`
	ResponseID    string    `json:"response_id"`
	ResponseCount int       `json:"response_count"`
	HasComment    bool      `json:"has_comment"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type ReportEvent struct {
	Kind       ReportKind `json:"kind"`
	SubjectID  string     `json:"subject_id"`
	Recipients []string   `json:"recipients"`
	Error      string     `json:"error,omitempty"`
}

type AuditSubmittedEvent struct {
	AuditID         string  `json:"audit_id"`
	Email           string  `json:"email"`
	TotalScore      float64 `json:"total_score"`
	HighestCategory string  `json:"highest_category"`
	LowestCategory  string  `json:"lowest_category"`
	EmailSent       bool    `json:"email_sent"`
}

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// NewSessionCreatedEvent is addressed to the manager; public is the admin copy
func NewSessionCreatedEvent(data SessionCreatedEvent, public bool) *NotificationEvent {
	if public {
		return newEvent(EventSessionPublicCreated, data)
	}
	return newEvent(EventSessionCreated, data)
}

func NewResponseSubmittedEvent(data ResponseSubmittedEvent) *NotificationEvent {
	return newEvent(EventResponseSubmitted, data)
}

func NewReportSentEvent(kind ReportKind, subjectID string, recipients []string) *NotificationEvent {
	return newEvent(EventReportSent, ReportEvent{
		Kind:       kind,
		SubjectID:  subjectID,
		Recipients: recipients,
	})
}

func NewReportFailedEvent(kind ReportKind, subjectID string, recipients []string, cause error) *NotificationEvent {
	data := ReportEvent{
		Kind:       kind,
		SubjectID:  subjectID,
		Recipients: recipients,
	}
	if cause != nil {
		data.Error = cause.Error()
	}
	return newEvent(EventReportFailed, data)
}

func NewAuditSubmittedEvent(data AuditSubmittedEvent) *NotificationEvent {
	return newEvent(EventAuditSubmitted, data)
}

// GenerateEventID returns a random UUID string
func GenerateEventID() string {
	return uuid.NewString()
}
