package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
)

type SessionStatus string

const (
	SessionOpen     SessionStatus = "open"
	SessionClosed   SessionStatus = "closed"
	SessionInactive SessionStatus = "inactive"
)

// FeedbackSession is a time-boxed collection point for anonymous manager feedback
type FeedbackSession struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string                      `json:"title" gorm:"not null;size:200"`
	Description *string                     `json:"description,omitempty" gorm:"type:text"`
	Questions   datatypes.JSONSlice[string] `json:"questions" gorm:"type:jsonb;not null"`
	ScaleType   questionnaire.ScaleType     `json:"scale_type" gorm:"not null;size:16"`

	// Lifecycle
	IsActive  bool      `json:"is_active" gorm:"not null;index"`
	IsPublic  bool      `json:"is_public" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`

	// Manager
	ManagerName  string `json:"manager_name" gorm:"not null;size:100"`
	ManagerEmail string `json:"manager_email" gorm:"not null;size:255;index"`

	// Reporting
	ResponseCount   int        `json:"response_count" gorm:"not null"`
	ReportGenerated bool       `json:"report_generated" gorm:"not null"`
	ReportSent      bool       `json:"report_sent" gorm:"not null;index"`
	ReportSentAt    *time.Time `json:"report_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Responses []FeedbackResponse `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (FeedbackSession) TableName() string {
	return "feedback_sessions"
}

func (s *FeedbackSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ScaleMax is the top value of the session scale; unknown scales behave as 5-point
func (s *FeedbackSession) ScaleMax() int {
	if max, err := s.ScaleType.Max(); err == nil {
		return max
	}
	return 5
}

// LikertQuestions are the questions answered on the scale
func (s *FeedbackSession) LikertQuestions() []string {
	likert, _ := questionnaire.SplitPulseQuestions(s.Questions)
	return likert
}

// OpenTextPrompt is the free-text question, empty when the session has none
func (s *FeedbackSession) OpenTextPrompt() string {
	_, prompt := questionnaire.SplitPulseQuestions(s.Questions)
	return prompt
}

// IsExpired reports whether the feedback window has ended at now
func (s *FeedbackSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Status evaluates expiry before the active flag
func (s *FeedbackSession) Status(now time.Time) SessionStatus {
	switch {
	case s.IsExpired(now):
		return SessionClosed
	case !s.IsActive:
		return SessionInactive
	default:
		return SessionOpen
	}
}

// RemainingSeconds until expiry, never negative
func (s *FeedbackSession) RemainingSeconds(now time.Time) int64 {
	if s.IsExpired(now) {
		return 0
	}
	return int64(s.ExpiresAt.Sub(now) / time.Second)
}
