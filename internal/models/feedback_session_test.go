package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

func TestFeedbackSessionStatus(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		isActive  bool
		want      SessionStatus
		remaining int64
	}{
		{"open", now.Add(90 * time.Second), true, SessionOpen, 90},
		{"expired but active is closed", now.Add(-time.Second), true, SessionClosed, 0},
		{"expiry instant is closed", now, true, SessionClosed, 0},
		{"inactive", now.Add(time.Hour), false, SessionInactive, 3600},
		{"expired and inactive is closed", now.Add(-time.Hour), false, SessionClosed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &FeedbackSession{ExpiresAt: tt.expiresAt, IsActive: tt.isActive}
			assert.Equal(t, tt.want, s.Status(now))
			assert.Equal(t, tt.remaining, s.RemainingSeconds(now))
		})
	}
}

func TestFeedbackSessionQuestions(t *testing.T) {
	s := &FeedbackSession{
		Questions: questionnaire.DefaultPulseQuestions(),
		ScaleType: questionnaire.ScaleLikert7,
	}

	assert.Len(t, s.LikertQuestions(), questionnaire.MaxLikertQuestions)
	assert.Equal(t, questionnaire.OpenTextPrompt, s.OpenTextPrompt())
	assert.Equal(t, 7, s.ScaleMax())

	s.ScaleType = "unknown"
	assert.Equal(t, 5, s.ScaleMax())
}

func TestAuditResultRoundTrip(t *testing.T) {
	q := questionnaire.ClarityAudit()
	answers := map[int]int{}
	for i := 0; i < q.Len(); i++ {
		answers[i] = 4
	}
	result := scoring.NewClarityEngine().Score(q, answers)

	audit := NewAuditResult("lead@example.com", nil, answers, result)
	assert.Equal(t, result, audit.ScoringResult())
	assert.Equal(t, "lead@example.com", audit.DisplayName())

	name := "Alex"
	audit.Name = &name
	assert.Equal(t, "Alex", audit.DisplayName())
}
