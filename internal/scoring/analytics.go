package scoring

import (
	"strings"

	"github.com/montanaflynn/stats"
)

// SessionAnalytics aggregates every response of a feedback session
type SessionAnalytics struct {
	TotalResponses        int       `json:"total_responses"`
	ScaleMax              int       `json:"scale_max"`
	Questions             []string  `json:"questions"`
	QuestionAverages      []float64 `json:"question_averages"`
	QuestionMedians       []float64 `json:"question_medians"`
	QuestionAnswered      []int     `json:"question_answered"`
	ResponseDistributions [][]int   `json:"response_distributions"`
	OverallAverage        float64   `json:"overall_average"`
	OverallPercentage     int       `json:"overall_percentage"`
	StrongestQuestion     int       `json:"strongest_question"`
	WeakestQuestion       int       `json:"weakest_question"`
	Comments              []string  `json:"comments"`
	CommentCount          int       `json:"comment_count"`
	PerformanceCategory   string    `json:"performance_category"`
}

// HighestScore is the average of the strongest question, or 0 without answers
func (a *SessionAnalytics) HighestScore() float64 {
	if a.StrongestQuestion < 0 {
		return 0
	}
	return a.QuestionAverages[a.StrongestQuestion]
}

// LowestScore is the average of the weakest question, or 0 without answers
func (a *SessionAnalytics) LowestScore() float64 {
	if a.WeakestQuestion < 0 {
		return 0
	}
	return a.QuestionAverages[a.WeakestQuestion]
}

// AnalyzeSession computes per question and overall statistics. A response value counts only
// when it lies in 1..scaleMax; rows shorter than the question list simply contribute less.
func AnalyzeSession(questions []string, responses [][]int, comments []string, scaleMax int) *SessionAnalytics {
	a := &SessionAnalytics{
		TotalResponses:        len(responses),
		ScaleMax:              scaleMax,
		Questions:             append([]string(nil), questions...),
		QuestionAverages:      make([]float64, len(questions)),
		QuestionMedians:       make([]float64, len(questions)),
		QuestionAnswered:      make([]int, len(questions)),
		ResponseDistributions: make([][]int, len(questions)),
		StrongestQuestion:     -1,
		WeakestQuestion:       -1,
		Comments:              []string{},
	}

	var all stats.Float64Data
	for i := range questions {
		a.ResponseDistributions[i] = make([]int, scaleMax)

		var values stats.Float64Data
		for _, row := range responses {
			if i >= len(row) {
				continue
			}
			v := row[i]
			if v < 1 || v > scaleMax {
				continue
			}
			values = append(values, float64(v))
			a.ResponseDistributions[i][v-1]++
		}

		a.QuestionAnswered[i] = len(values)
		if len(values) == 0 {
			continue
		}
		all = append(all, values...)

		mean, _ := stats.Mean(values)
		a.QuestionAverages[i], _ = stats.Round(mean, 2)
		a.QuestionMedians[i], _ = stats.Median(values)

		if a.StrongestQuestion < 0 || a.QuestionAverages[i] > a.QuestionAverages[a.StrongestQuestion] {
			a.StrongestQuestion = i
		}
		if a.WeakestQuestion < 0 || a.QuestionAverages[i] < a.QuestionAverages[a.WeakestQuestion] {
			a.WeakestQuestion = i
		}
	}

	if len(all) > 0 && scaleMax > 0 {
		mean, _ := stats.Mean(all)
		a.OverallAverage, _ = stats.Round(mean, 2)
		pct, _ := stats.Round(mean/float64(scaleMax)*100, 0)
		a.OverallPercentage = int(pct)
	}
	a.PerformanceCategory = PerformanceCategory(a.OverallAverage, scaleMax)

	for _, c := range comments {
		if c = strings.TrimSpace(c); c != "" {
			a.Comments = append(a.Comments, c)
		}
	}
	a.CommentCount = len(a.Comments)

	return a
}
