package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
)

func uniformAnswers(n, value int) map[int]int {
	answers := make(map[int]int, n)
	for i := 0; i < n; i++ {
		answers[i] = value
	}
	return answers
}

func twoCategoryQuestionnaire(t *testing.T) *questionnaire.Questionnaire {
	t.Helper()
	def := `
categories:
  - id: a
    title: A
    questions: [a1, a2, a3, a4]
  - id: b
    title: B
    questions: [b1, b2, b3, b4]
`
	q, err := questionnaire.Parse([]byte(def))
	require.NoError(t, err)
	return q
}

func TestScoreAllMaximum(t *testing.T) {
	engine := NewClarityEngine()
	q := questionnaire.ClarityAudit()

	result := engine.Score(q, uniformAnswers(16, 5))

	for _, id := range q.CategoryIDs() {
		assert.Equal(t, 5.0, result.CategoryScores[id], id)
	}
	assert.Equal(t, 5.0, result.OverallScore)
	assert.Equal(t, "Exceptional", engine.Describe(result.OverallScore))
	assert.Equal(t, "team-performance", result.HighestCategory)
	assert.Equal(t, "team-performance", result.LowestCategory)
	assert.Equal(t, 16, result.Answered)
}

func TestScoreSplitCategories(t *testing.T) {
	engine := NewClarityEngine()
	q := twoCategoryQuestionnaire(t)

	answers := map[int]int{0: 1, 1: 1, 2: 1, 3: 1, 4: 5, 5: 5, 6: 5, 7: 5}
	result := engine.Score(q, answers)

	assert.Equal(t, 1.0, result.CategoryScores["a"])
	assert.Equal(t, "Critical Concern", engine.Describe(result.CategoryScores["a"]))
	assert.Equal(t, 5.0, result.CategoryScores["b"])
	assert.Equal(t, "Exceptional", engine.Describe(result.CategoryScores["b"]))
	assert.Equal(t, 3.0, result.OverallScore)
	assert.Equal(t, "Solid", engine.Describe(result.OverallScore))
	assert.Equal(t, "a", result.LowestCategory)
	assert.Equal(t, "b", result.HighestCategory)
}

func TestScoreEmptyAndPartial(t *testing.T) {
	engine := NewClarityEngine()
	q := questionnaire.ClarityAudit()

	t.Run("empty", func(t *testing.T) {
		result := engine.Score(q, map[int]int{})
		assert.Equal(t, 0.0, result.OverallScore)
		for _, id := range q.CategoryIDs() {
			assert.Equal(t, 0.0, result.CategoryScores[id])
		}
		assert.Empty(t, result.HighestCategory)
		assert.Empty(t, result.LowestCategory)
	})

	t.Run("unanswered categories are skipped", func(t *testing.T) {
		// only values-culture (4..7) and people-retention (12..15)
		answers := map[int]int{4: 4, 5: 3, 6: 4, 7: 4, 12: 2, 13: 3, 14: 2, 15: 2, 99: 1}
		result := engine.Score(q, answers)

		assert.Equal(t, 0.0, result.CategoryScores["team-performance"])
		assert.Equal(t, 3.8, result.CategoryScores["values-culture"])
		assert.Equal(t, 2.3, result.CategoryScores["people-retention"])
		assert.Equal(t, 3.0, result.OverallScore)
		assert.Equal(t, "values-culture", result.HighestCategory)
		assert.Equal(t, "people-retention", result.LowestCategory)
		assert.Equal(t, 8, result.Answered)
	})
}

func TestLowestSentinelUsesScaleMax(t *testing.T) {
	engine := NewPercentEngine(7)
	q := twoCategoryQuestionnaire(t)

	result := engine.Score(q, map[int]int{0: 7, 1: 6, 2: 6, 3: 6, 4: 6, 5: 6, 6: 6, 7: 5})

	assert.Equal(t, 6.3, result.CategoryScores["a"])
	assert.Equal(t, 5.8, result.CategoryScores["b"])
	assert.Equal(t, "a", result.HighestCategory)
	assert.Equal(t, "b", result.LowestCategory)
}

func TestDescribe(t *testing.T) {
	engine := NewClarityEngine()

	tests := []struct {
		score float64
		want  string
	}{
		{5, "Exceptional"},
		{4.5, "Exceptional"},
		{4.4, "Very Strong"},
		{4, "Very Strong"},
		{3.5, "Strong"},
		{3, "Solid"},
		{2.9, "Developing"},
		{2.5, "Developing"},
		{2, "Needs Attention"},
		{1.9, "Critical Concern"},
		{0, "Critical Concern"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.Describe(tt.score), "score %.1f", tt.score)
	}
}

func TestOverallFeedback(t *testing.T) {
	engine := NewClarityEngine()

	assert.Equal(t, "Exceptional Leadership Team", engine.OverallFeedback(4.5).Title)
	assert.Equal(t, "Strong Leadership Team", engine.OverallFeedback(4.4).Title)
	assert.Equal(t, "Strong Leadership Team", engine.OverallFeedback(3.5).Title)
	assert.Equal(t, "Developing Leadership Team", engine.OverallFeedback(2.5).Title)
	assert.Equal(t, "Leadership Team Needs Significant Attention", engine.OverallFeedback(2.4).Title)

	for _, score := range []float64{5, 4, 3, 1} {
		assert.Len(t, engine.OverallFeedback(score).ActionItems, 3)
	}

	assert.Empty(t, NewPercentEngine(7).OverallFeedback(6).Title)
}

func TestCategoryNarrative(t *testing.T) {
	high := CategoryNarrative("values-culture", 4)
	mid := CategoryNarrative("values-culture", 3.9)
	low := CategoryNarrative("values-culture", 2.9)

	assert.Contains(t, high, "effectively models values")
	assert.Contains(t, mid, "foundation of positive culture")
	assert.Contains(t, low, "prioritise culture-building")
	assert.Empty(t, CategoryNarrative("unknown", 5))
}

func TestValidateAnswers(t *testing.T) {
	engine := NewClarityEngine()
	q := questionnaire.ClarityAudit()

	require.NoError(t, engine.ValidateAnswers(q, uniformAnswers(16, 3)))
	assert.True(t, engine.IsComplete(q, uniformAnswers(16, 1)))

	t.Run("missing answer", func(t *testing.T) {
		answers := uniformAnswers(16, 3)
		delete(answers, 7)

		err := engine.ValidateAnswers(q, answers)
		var incomplete *IncompleteError
		require.ErrorAs(t, err, &incomplete)
		assert.Equal(t, 15, incomplete.Answered)
		assert.Equal(t, 16, incomplete.Expected)
	})

	t.Run("zero means unanswered", func(t *testing.T) {
		answers := uniformAnswers(16, 3)
		answers[0] = 0

		var incomplete *IncompleteError
		assert.ErrorAs(t, engine.ValidateAnswers(q, answers), &incomplete)
	})

	t.Run("out of range", func(t *testing.T) {
		answers := uniformAnswers(16, 3)
		answers[3] = 6

		var outOfRange *OutOfRangeError
		require.ErrorAs(t, engine.ValidateAnswers(q, answers), &outOfRange)
		assert.Equal(t, 3, outOfRange.Index)
		assert.False(t, engine.IsComplete(q, answers))
	})

	t.Run("unknown index", func(t *testing.T) {
		answers := uniformAnswers(16, 3)
		answers[16] = 3

		var outOfRange *OutOfRangeError
		assert.ErrorAs(t, engine.ValidateAnswers(q, answers), &outOfRange)
	})
}

func TestPerformanceCategory(t *testing.T) {
	tests := []struct {
		name     string
		average  float64
		scaleMax int
		want     string
	}{
		{"5 point excellent", 4.3, 5, PerformanceExcellent},
		{"5 point good", 3.6, 5, PerformanceGood},
		{"5 point fair", 2.8, 5, PerformanceFair},
		{"5 point low", 2.7, 5, PerformanceNeedsImprovement},
		{"7 point excellent", 6, 7, PerformanceExcellent},
		{"7 point good", 5.0, 7, PerformanceGood},
		{"7 point fair", 3.9, 7, PerformanceFair},
		{"7 point low", 3.8, 7, PerformanceNeedsImprovement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PerformanceCategory(tt.average, tt.scaleMax))
		})
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 3.8, Round1(3.75))
	assert.Equal(t, 2.3, Round1(2.25))
	assert.Equal(t, 0.0, Round1(0))
}
