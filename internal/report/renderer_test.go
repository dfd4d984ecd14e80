package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Options{})
	require.NoError(t, err)
	return r
}

func scoredAudit(answers map[int]int) AuditInput {
	q := questionnaire.ClarityAudit()
	return AuditInput{
		Name:          "Jordan",
		Email:         "jordan@example.com",
		Questionnaire: q,
		Result:        scoring.NewClarityEngine().Score(q, answers),
	}
}

func mixedAnswers() map[int]int {
	answers := make(map[int]int, 16)
	values := []int{4, 3, 5, 2}
	for i := 0; i < 16; i++ {
		answers[i] = values[i/4]
	}
	return answers
}

func TestRenderAuditReport(t *testing.T) {
	r := newTestRenderer(t)
	generated := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	html, err := r.RenderAuditReport(scoredAudit(mixedAnswers()), generated)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Prepared for: Jordan")
	assert.Contains(t, html, "Generated on: 14 March 2025")
	assert.Contains(t, html, "Strong Leadership Team")
	assert.Contains(t, html, "Leadership Alignment")
	assert.Contains(t, html, "Priority Focus Area:")
	assert.Contains(t, html, "Strength to Leverage:")
	assert.Contains(t, html, `href="https://calendly.com/chloe-cultivatedhq/30min"`)
	assert.Contains(t, html, "chloe@cultivatedhq.com.au")
	assert.Contains(t, html, "Values &amp; Culture")

	// x = (4+2)/2 = 3 -> 50%, y = (3+5)/2 = 4 -> 75% -> top 25%
	assert.Contains(t, html, "left: 50%; top: 25%;")
}

func TestRenderAuditReportQuadrantKeepsFullPrecision(t *testing.T) {
	r := newTestRenderer(t)
	answers := map[int]int{
		0: 3, 1: 3, 2: 3, 3: 2,     // team-performance 2.75 -> 2.8
		12: 3, 13: 3, 14: 2, 15: 2, // people-retention 2.5
	}
	for i := 4; i < 12; i++ {
		answers[i] = 4
	}

	html, err := r.RenderAuditReport(scoredAudit(answers), time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	// x = (2.8+2.5)/2 = 2.65 -> 41.25%
	assert.Contains(t, html, "left: 41.25%; top: 25%;")
	assert.NotContains(t, html, "left: 41.2%")
}

func TestRenderAuditReportFallsBackToEmail(t *testing.T) {
	r := newTestRenderer(t)
	in := scoredAudit(mixedAnswers())
	in.Name = "  "

	html, err := r.RenderAuditReport(in, time.Now())
	require.NoError(t, err)
	assert.Contains(t, html, "Prepared for: jordan@example.com")
}

func TestRenderAuditReportIsDeterministic(t *testing.T) {
	r := newTestRenderer(t)
	in := scoredAudit(mixedAnswers())

	first, err := r.RenderAuditReport(in, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	second, err := r.RenderAuditReport(in, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	later, err := r.RenderAuditReport(in, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, first, strings.ReplaceAll(later, "2 June 2025", "1 January 2025"))
}

func TestRenderAuditReportMissingScores(t *testing.T) {
	r := newTestRenderer(t)
	q := questionnaire.ClarityAudit()

	tests := map[string]AuditInput{
		"nil result":       {Questionnaire: q},
		"no scores":        {Questionnaire: q, Result: &scoring.Result{CategoryScores: map[string]float64{}}},
		"missing category": {Questionnaire: q, Result: &scoring.Result{CategoryScores: map[string]float64{"team-performance": 4}}},
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			html, err := r.RenderAuditReport(in, time.Now())
			assert.ErrorIs(t, err, ErrMissingScores)
			assert.Empty(t, html)
		})
	}
}

func TestRenderSessionReport(t *testing.T) {
	r := newTestRenderer(t)
	analytics := scoring.AnalyzeSession(
		[]string{"My manager communicates clearly and effectively.", "My manager leads by example."},
		[][]int{{5, 3}, {4, 3}},
		[]string{"Start/Stop/Keep Response:\n\nKeep the retros"},
		5,
	)

	in := SessionInput{
		ManagerName: "Sam Lee",
		Title:       "Q3 pulse",
		ScaleType:   questionnaire.ScaleLikert5,
		CreatedAt:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt:   time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
		Analytics:   analytics,
	}

	html, err := r.RenderSessionReport(in, time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, html, "Leadership Feedback Report")
	assert.Contains(t, html, "Sam Lee")
	assert.Contains(t, html, "1 July 2025 to 8 July 2025")
	assert.Contains(t, html, "1 = Strongly Disagree to 5 = Strongly Agree")
	assert.Contains(t, html, "75%")
	assert.Contains(t, html, "4.5/5")
	assert.Contains(t, html, "Keep the retros")
	assert.Contains(t, html, "Your team shared these anonymous insights")
	assert.Contains(t, html, "performance-good")
	assert.Contains(t, html, "Strong Leadership Foundation")
	assert.NotContains(t, html, "Description:")
}

func TestRenderSessionReportWithoutComments(t *testing.T) {
	r := newTestRenderer(t)
	in := SessionInput{
		ScaleType: questionnaire.ScaleLikert7,
		Analytics: scoring.AnalyzeSession([]string{"q"}, [][]int{{2}}, nil, 7),
	}

	html, err := r.RenderSessionReport(in, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, html, "Anonymous Comments</h2>")
	assert.Contains(t, html, "7 = Strongly Agree")
	assert.Contains(t, html, "Significant Development Needed")
}

func TestRenderSessionReportMissingAnalytics(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.RenderSessionReport(SessionInput{Title: "x"}, time.Now())
	assert.ErrorIs(t, err, ErrMissingAnalytics)
}
