package report

import (
	"fmt"
	"strings"

	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

// FormatCategoryName turns a kebab-case id into Title Case words
func FormatCategoryName(id string) string {
	if id == "" {
		return "N/A"
	}

	words := strings.Split(id, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SummaryMarkdown renders the plain-text summary of a scored audit
func (r *Renderer) SummaryMarkdown(in AuditInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	q, result := in.Questionnaire, in.Result

	for _, c := range q.Categories {
		score := result.CategoryScores[c.ID]
		fmt.Fprintf(&b, "**%s**\nScore: %.1f/%d\n%s\n\n", c.Title, score, r.engine.ScaleMax, scoring.CategoryNarrative(c.ID, score))
	}

	feedback := r.engine.OverallFeedback(result.OverallScore)
	fmt.Fprintf(&b, "**Overall Assessment**\nTotal Score: %.1f/%d - %s\n%s\n\n",
		result.OverallScore, r.engine.ScaleMax, r.engine.Describe(result.OverallScore), feedback.Description)

	b.WriteString("**Key Focus Areas**\n")
	fmt.Fprintf(&b, "- Strongest Area: %s (%.1f/%d)\n", r.categoryTitle(q, result.HighestCategory),
		result.CategoryScores[result.HighestCategory], r.engine.ScaleMax)
	fmt.Fprintf(&b, "- Development Area: %s (%.1f/%d)\n\n", r.categoryTitle(q, result.LowestCategory),
		result.CategoryScores[result.LowestCategory], r.engine.ScaleMax)

	b.WriteString("**Recommended Actions**\n")
	for _, item := range feedback.ActionItems {
		fmt.Fprintf(&b, "- %s\n", item)
	}

	return b.String(), nil
}
