package scoring

import (
	"fmt"
	"math"

	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
)

// Band maps every score at or above Min to Label. Bands are evaluated in order,
// so they must be sorted by descending Min.
type Band struct {
	Min   float64
	Label string
}

// Feedback is the fixed narrative bundle attached to an overall score
type Feedback struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ActionItems []string `json:"action_items"`
}

// FeedbackBand selects a Feedback bundle for overall scores at or above Min
type FeedbackBand struct {
	Min      float64
	Feedback Feedback
}

// Engine aggregates raw answers into category and overall scores and classifies them.
// The same engine serves the 5-point audit and the percentage based survey bands.
type Engine struct {
	ScaleMax      int
	Bands         []Band
	FeedbackBands []FeedbackBand
}

// Result is the scored form of a response set
type Result struct {
	CategoryScores  map[string]float64 `json:"category_scores"`
	OverallScore    float64            `json:"total_score"`
	HighestCategory string             `json:"highest_category"`
	LowestCategory  string             `json:"lowest_category"`
	Answered        int                `json:"answered"`
}

// IncompleteError reports a response set that does not answer every question
type IncompleteError struct {
	Answered int
	Expected int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("answered %d of %d questions", e.Answered, e.Expected)
}

// OutOfRangeError reports an answer outside 1..ScaleMax
type OutOfRangeError struct {
	Index int
	Value int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("answer %d for question %d is outside 1..%d", e.Value, e.Index, e.Max)
}

// NewClarityEngine returns the 5-point engine with the seven tier audit bands
func NewClarityEngine() *Engine {
	return &Engine{
		ScaleMax: 5,
		Bands: []Band{
			{Min: 4.5, Label: "Exceptional"},
			{Min: 4, Label: "Very Strong"},
			{Min: 3.5, Label: "Strong"},
			{Min: 3, Label: "Solid"},
			{Min: 2.5, Label: "Developing"},
			{Min: 2, Label: "Needs Attention"},
			{Min: 0, Label: "Critical Concern"},
		},
		FeedbackBands: clarityFeedbackBands,
	}
}

// Performance categories used by session reports
const (
	PerformanceExcellent        = "excellent"
	PerformanceGood             = "good"
	PerformanceFair             = "fair"
	PerformanceNeedsImprovement = "needs-improvement"
)

// NewPercentEngine returns an engine whose bands sit at fixed fractions of scaleMax
func NewPercentEngine(scaleMax int) *Engine {
	percentOf := func(pct int) float64 {
		return float64(scaleMax*pct) / 100
	}
	return &Engine{
		ScaleMax: scaleMax,
		Bands: []Band{
			{Min: percentOf(85), Label: PerformanceExcellent},
			{Min: percentOf(70), Label: PerformanceGood},
			{Min: percentOf(55), Label: PerformanceFair},
			{Min: 0, Label: PerformanceNeedsImprovement},
		},
	}
}

// PerformanceCategory classifies an average answer against the percentage bands
func PerformanceCategory(average float64, scaleMax int) string {
	return NewPercentEngine(scaleMax).Describe(average)
}

// Round1 rounds half up to one decimal place
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Score aggregates answers (question index to value) by category.
// Categories without answers score 0 and are never picked as highest or lowest.
func (e *Engine) Score(q *questionnaire.Questionnaire, answers map[int]int) *Result {
	type tally struct {
		total int
		count int
	}

	tallies := make(map[string]*tally, len(q.Categories))
	for _, id := range q.CategoryIDs() {
		tallies[id] = &tally{}
	}

	for index, value := range answers {
		category, ok := q.CategoryOf(index)
		if !ok {
			continue
		}
		tallies[category].total += value
		tallies[category].count++
	}

	result := &Result{CategoryScores: make(map[string]float64, len(tallies))}

	overallTotal, overallCount := 0, 0
	for _, id := range q.CategoryIDs() {
		t := tallies[id]
		if t.count == 0 {
			result.CategoryScores[id] = 0
			continue
		}
		result.CategoryScores[id] = Round1(float64(t.total) / float64(t.count))
		overallTotal += t.total
		overallCount += t.count
	}

	if overallCount > 0 {
		result.OverallScore = Round1(float64(overallTotal) / float64(overallCount))
	}
	result.Answered = overallCount

	result.HighestCategory, result.LowestCategory = e.extremes(q.CategoryIDs(), result.CategoryScores)
	return result
}

// extremes walks categories in order. The lowest search starts from the scale maximum
// so a category at the maximum only wins when nothing scores lower.
func (e *Engine) extremes(order []string, scores map[string]float64) (highest, lowest string) {
	highScore := 0.0
	lowScore := float64(e.ScaleMax)

	for _, id := range order {
		score := scores[id]
		if score > highScore {
			highest, highScore = id, score
		}
		if score <= 0 {
			continue
		}
		if (lowest == "" && score <= lowScore) || score < lowScore {
			lowest, lowScore = id, score
		}
	}
	return highest, lowest
}

// Describe returns the qualitative band for score
func (e *Engine) Describe(score float64) string {
	if len(e.Bands) == 0 {
		return ""
	}
	for _, b := range e.Bands {
		if score >= b.Min {
			return b.Label
		}
	}
	return e.Bands[len(e.Bands)-1].Label
}

// OverallFeedback returns the narrative bundle for an overall score
func (e *Engine) OverallFeedback(score float64) Feedback {
	if len(e.FeedbackBands) == 0 {
		return Feedback{}
	}
	for _, b := range e.FeedbackBands {
		if score >= b.Min {
			return b.Feedback
		}
	}
	return e.FeedbackBands[len(e.FeedbackBands)-1].Feedback
}

// ValidateAnswers checks that every question is answered within 1..ScaleMax
func (e *Engine) ValidateAnswers(q *questionnaire.Questionnaire, answers map[int]int) error {
	answered := 0
	for i := 0; i < q.Len(); i++ {
		value, ok := answers[i]
		if !ok || value == 0 {
			continue
		}
		if value < 1 || value > e.ScaleMax {
			return &OutOfRangeError{Index: i, Value: value, Max: e.ScaleMax}
		}
		answered++
	}

	if answered != q.Len() {
		return &IncompleteError{Answered: answered, Expected: q.Len()}
	}

	for index := range answers {
		if index < 0 || index >= q.Len() {
			return &OutOfRangeError{Index: index, Value: answers[index], Max: e.ScaleMax}
		}
	}
	return nil
}

// IsComplete reports whether answers is a complete, in-range response set for q
func (e *Engine) IsComplete(q *questionnaire.Questionnaire, answers map[int]int) bool {
	return e.ValidateAnswers(q, answers) == nil
}
