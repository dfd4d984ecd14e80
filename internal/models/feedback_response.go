package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FeedbackResponse is one anonymous answer set for a session
type FeedbackResponse struct {
	ID          uuid.UUID                `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID                `json:"session_id" gorm:"type:uuid;not null;index"`
	Responses   datatypes.JSONSlice[int] `json:"responses" gorm:"type:jsonb;not null"`
	Comment     *string                  `json:"comment,omitempty" gorm:"type:text"`
	SubmittedAt time.Time                `json:"submitted_at" gorm:"not null;index"`
}

func (FeedbackResponse) TableName() string {
	return "feedback_responses"
}

func (r *FeedbackResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now()
	}
	return nil
}
