package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSession(t *testing.T) {
	questions := []string{"clear", "trust", "support"}
	responses := [][]int{
		{5, 3, 4},
		{4, 3, 2},
		{5, 3, 0},
		{3, 3},
	}
	comments := []string{"Keep the 1:1s", "  ", "", "More context please"}

	a := AnalyzeSession(questions, responses, comments, 5)

	assert.Equal(t, 4, a.TotalResponses)
	assert.Equal(t, []float64{4.25, 3, 3}, a.QuestionAverages)
	assert.Equal(t, []float64{4.5, 3, 3}, a.QuestionMedians)
	assert.Equal(t, []int{4, 4, 2}, a.QuestionAnswered)
	assert.Equal(t, []int{0, 0, 1, 1, 2}, a.ResponseDistributions[0])
	assert.Equal(t, []int{0, 0, 4, 0, 0}, a.ResponseDistributions[1])
	assert.Equal(t, []int{0, 1, 0, 1, 0}, a.ResponseDistributions[2])

	// 35 over 10 answers
	assert.Equal(t, 3.5, a.OverallAverage)
	assert.Equal(t, 70, a.OverallPercentage)
	assert.Equal(t, PerformanceGood, a.PerformanceCategory)

	assert.Equal(t, 0, a.StrongestQuestion)
	assert.Equal(t, 4.25, a.HighestScore())
	assert.Equal(t, 1, a.WeakestQuestion)
	assert.Equal(t, 3.0, a.LowestScore())

	assert.Equal(t, []string{"Keep the 1:1s", "More context please"}, a.Comments)
	assert.Equal(t, 2, a.CommentCount)
}

func TestAnalyzeSessionSevenPoint(t *testing.T) {
	a := AnalyzeSession([]string{"q1", "q2"}, [][]int{{7, 6}, {7, 8}, {6, 6}}, nil, 7)

	assert.Equal(t, []float64{6.67, 6}, a.QuestionAverages)
	assert.Len(t, a.ResponseDistributions[0], 7)
	assert.Equal(t, 2, a.ResponseDistributions[0][6])
	assert.Equal(t, 2, a.QuestionAnswered[1])
	assert.Equal(t, 6.4, a.OverallAverage)
	assert.Equal(t, 91, a.OverallPercentage)
	assert.Equal(t, PerformanceExcellent, a.PerformanceCategory)
}

func TestAnalyzeSessionWithoutResponses(t *testing.T) {
	a := AnalyzeSession([]string{"q1", "q2"}, nil, nil, 5)

	assert.Equal(t, 0, a.TotalResponses)
	assert.Equal(t, []float64{0, 0}, a.QuestionAverages)
	assert.Equal(t, -1, a.StrongestQuestion)
	assert.Equal(t, -1, a.WeakestQuestion)
	assert.Equal(t, 0.0, a.HighestScore())
	assert.Equal(t, 0, a.OverallPercentage)
	assert.Equal(t, PerformanceNeedsImprovement, a.PerformanceCategory)
	assert.Empty(t, a.Comments)
}
