package questionnaire

import "fmt"

// ScaleType identifies the Likert response scale a questionnaire is answered on
type ScaleType string

const (
	ScaleLikert5 ScaleType = "likert_5"
	ScaleLikert7 ScaleType = "likert_7"
)

var (
	likert5Labels = []string{
		"Strongly Disagree",
		"Disagree",
		"Neutral",
		"Agree",
		"Strongly Agree",
	}

	likert7Labels = []string{
		"Strongly Disagree",
		"Disagree",
		"Somewhat Disagree",
		"Neutral",
		"Somewhat Agree",
		"Agree",
		"Strongly Agree",
	}
)

// Valid reports whether s is a supported scale
func (s ScaleType) Valid() bool {
	return s == ScaleLikert5 || s == ScaleLikert7
}

// Max returns the highest value on the scale. Values run 1..Max.
func (s ScaleType) Max() (int, error) {
	switch s {
	case ScaleLikert5:
		return 5, nil
	case ScaleLikert7:
		return 7, nil
	default:
		return 0, fmt.Errorf("unsupported scale type %q", string(s))
	}
}

// ScaleLabels returns the anchors for each value of the scale in ascending order.
// The last label is always the most positive one. Unknown scales fall back to
// the 5-point anchors.
func ScaleLabels(scale ScaleType) []string {
	src := likert5Labels
	if scale == ScaleLikert7 {
		src = likert7Labels
	}

	labels := make([]string, len(src))
	copy(labels, src)
	return labels
}
