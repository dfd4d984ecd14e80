package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

// AuditResult is a scored Leadership Clarity Audit. Rows are never updated.
type AuditResult struct {
	ID              uuid.UUID                              `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string                                 `json:"email" gorm:"not null;size:255;index"`
	Name            *string                                `json:"name,omitempty" gorm:"size:100"`
	Answers         datatypes.JSONType[map[int]int]        `json:"answers" gorm:"type:jsonb;not null"`
	CategoryScores  datatypes.JSONType[map[string]float64] `json:"category_scores" gorm:"type:jsonb;not null"`
	TotalScore      float64                                `json:"total_score" gorm:"not null"`
	LowestCategory  string                                 `json:"lowest_category" gorm:"size:64"`
	HighestCategory string                                 `json:"highest_category" gorm:"size:64"`
	CreatedAt       time.Time                              `json:"created_at" gorm:"index"`
}

func (AuditResult) TableName() string {
	return "audit_results"
}

func (a *AuditResult) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *AuditResult) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrNotImplemented
}

// NewAuditResult captures a scored answer set
func NewAuditResult(email string, name *string, answers map[int]int, result *scoring.Result) *AuditResult {
	return &AuditResult{
		Email:           email,
		Name:            name,
		Answers:         datatypes.NewJSONType(answers),
		CategoryScores:  datatypes.NewJSONType(result.CategoryScores),
		TotalScore:      result.OverallScore,
		LowestCategory:  result.LowestCategory,
		HighestCategory: result.HighestCategory,
	}
}

// ScoringResult rebuilds the engine result from the stored columns
func (a *AuditResult) ScoringResult() *scoring.Result {
	answered := 0
	for _, v := range a.Answers.Data() {
		if v > 0 {
			answered++
		}
	}
	return &scoring.Result{
		CategoryScores:  a.CategoryScores.Data(),
		OverallScore:    a.TotalScore,
		HighestCategory: a.HighestCategory,
		LowestCategory:  a.LowestCategory,
		Answered:        answered,
	}
}

// DisplayName is the name when given, otherwise the email
func (a *AuditResult) DisplayName() string {
	if a.Name != nil && *a.Name != "" {
		return *a.Name
	}
	return a.Email
}
