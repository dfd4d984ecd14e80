package report

// QuadrantAxes names the categories averaged onto each axis of the quadrant plot
type QuadrantAxes struct {
	X        []string
	Y        []string
	ScaleMax int
}

// QuadrantPoint is a position in percent of the plot area, origin top-left
type QuadrantPoint struct {
	XValue float64 `json:"x_value"`
	YValue float64 `json:"y_value"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

// ClarityQuadrant plots performance execution against cultural alignment
var ClarityQuadrant = QuadrantAxes{
	X:        []string{"team-performance", "people-retention"},
	Y:        []string{"values-culture", "leadership-alignment"},
	ScaleMax: 5,
}

// Place maps category scores onto the plot. Missing categories count as 0 and
// positions are clamped to the plot area.
func (a QuadrantAxes) Place(scores map[string]float64) QuadrantPoint {
	p := QuadrantPoint{
		XValue: axisMean(a.X, scores),
		YValue: axisMean(a.Y, scores),
	}
	p.Left = a.position(p.XValue)
	p.Top = 100 - a.position(p.YValue)
	return p
}

func (a QuadrantAxes) position(v float64) float64 {
	span := float64(a.ScaleMax - 1)
	if span <= 0 {
		return 0
	}
	return clamp((v-1)/span*100, 0, 100)
}

func axisMean(ids []string, scores map[string]float64) float64 {
	if len(ids) == 0 {
		return 0
	}
	sum := 0.0
	for _, id := range ids {
		sum += scores[id]
	}
	return sum / float64(len(ids))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
