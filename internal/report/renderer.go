package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	ErrMissingScores    = errors.New("audit result is missing category scores")
	ErrMissingAnalytics = errors.New("session report is missing analytics")
)

const (
	defaultBrandName    = "Cultivated HQ"
	defaultContactEmail = "chloe@cultivatedhq.com.au"
	defaultCTAURL       = "https://calendly.com/chloe-cultivatedhq/30min"
	dateLayout          = "2 January 2006"
)

// Options brands the rendered documents
type Options struct {
	BrandName    string
	ContactEmail string
	CTAURL       string
	Location     *time.Location
}

// Renderer turns scored results into standalone HTML documents
type Renderer struct {
	opts     Options
	engine   *scoring.Engine
	quadrant QuadrantAxes
	audit    *template.Template
	session  *template.Template
}

// AuditInput is a scored clarity audit together with the respondent identity
type AuditInput struct {
	Name          string
	Email         string
	Questionnaire *questionnaire.Questionnaire
	Result        *scoring.Result
}

func (in AuditInput) validate() error {
	if in.Result == nil || in.Questionnaire == nil || len(in.Result.CategoryScores) == 0 {
		return ErrMissingScores
	}
	for _, id := range in.Questionnaire.CategoryIDs() {
		if _, ok := in.Result.CategoryScores[id]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingScores, id)
		}
	}
	return nil
}

// SessionInput is a closed feedback session together with its analytics
type SessionInput struct {
	ManagerName string
	Title       string
	Description string
	ScaleType   questionnaire.ScaleType
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Analytics   *scoring.SessionAnalytics
}

// NewRenderer parses the embedded templates
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.BrandName == "" {
		opts.BrandName = defaultBrandName
	}
	if opts.ContactEmail == "" {
		opts.ContactEmail = defaultContactEmail
	}
	if opts.CTAURL == "" {
		opts.CTAURL = defaultCTAURL
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	funcs := template.FuncMap{
		"score1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"num":    func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
		"inc":    func(i int) int { return i + 1 },
	}

	audit, err := template.New("audit.html").Funcs(funcs).ParseFS(templateFS, "templates/audit.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse audit template: %w", err)
	}
	session, err := template.New("session.html").Funcs(funcs).ParseFS(templateFS, "templates/session.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse session template: %w", err)
	}

	return &Renderer{
		opts:     opts,
		engine:   scoring.NewClarityEngine(),
		quadrant: ClarityQuadrant,
		audit:    audit,
		session:  session,
	}, nil
}

type brandView struct {
	Name         string
	ContactEmail string
	CTAURL       string
	CTALabel     string
	GeneratedOn  string
}

func (r *Renderer) brand(generatedAt time.Time) brandView {
	label := strings.TrimPrefix(strings.TrimPrefix(r.opts.CTAURL, "https://"), "http://")
	return brandView{
		Name:         r.opts.BrandName,
		ContactEmail: r.opts.ContactEmail,
		CTAURL:       r.opts.CTAURL,
		CTALabel:     label,
		GeneratedOn:  r.formatDate(generatedAt),
	}
}

func (r *Renderer) formatDate(t time.Time) string {
	return t.In(r.opts.Location).Format(dateLayout)
}

func (r *Renderer) categoryTitle(q *questionnaire.Questionnaire, id string) string {
	if c, ok := q.Category(id); ok {
		return c.Title
	}
	return FormatCategoryName(id)
}

type categoryView struct {
	Title     string
	Color     string
	Score     float64
	Band      string
	Narrative string
	Lowest    bool
	Highest   bool
}

type auditView struct {
	Brand       brandView
	PreparedFor string
	Total       float64
	Band        string
	Strongest   string
	Weakest     string
	Quadrant    QuadrantPoint
	Categories  []categoryView
	Feedback    scoring.Feedback
}

// RenderAuditReport renders the Leadership Clarity Audit report. The output depends
// only on the input and generatedAt.
func (r *Renderer) RenderAuditReport(in AuditInput, generatedAt time.Time) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	result := in.Result
	view := auditView{
		Brand:       r.brand(generatedAt),
		PreparedFor: in.Name,
		Total:       result.OverallScore,
		Band:        r.engine.Describe(result.OverallScore),
		Strongest:   r.categoryTitle(in.Questionnaire, result.HighestCategory),
		Weakest:     r.categoryTitle(in.Questionnaire, result.LowestCategory),
		Quadrant:    r.quadrant.Place(result.CategoryScores),
		Feedback:    r.engine.OverallFeedback(result.OverallScore),
	}
	if strings.TrimSpace(view.PreparedFor) == "" {
		view.PreparedFor = in.Email
	}

	for _, c := range in.Questionnaire.Categories {
		score := result.CategoryScores[c.ID]
		view.Categories = append(view.Categories, categoryView{
			Title:     c.Title,
			Color:     c.Color,
			Score:     score,
			Band:      r.engine.Describe(score),
			Narrative: scoring.CategoryNarrative(c.ID, score),
			Lowest:    c.ID == result.LowestCategory,
			Highest:   c.ID == result.HighestCategory,
		})
	}

	return r.execute(r.audit, view)
}

type recommendation struct {
	Lead string
	Text string
}

type recommendationView struct {
	Headline string
	Intro    string
	Items    []recommendation
}

type questionView struct {
	Number       int
	Text         string
	Average      float64
	Median       float64
	Distribution []int
}

type sessionView struct {
	Brand          brandView
	ManagerName    string
	Title          string
	Description    string
	Period         string
	ScaleMax       int
	TopLabel       string
	BottomLabel    string
	Analytics      *scoring.SessionAnalytics
	Strongest      string
	Weakest        string
	Questions      []questionView
	Category       string
	Recommendation recommendationView
}

// RenderSessionReport renders the Leadership Feedback Report for a feedback session
func (r *Renderer) RenderSessionReport(in SessionInput, generatedAt time.Time) (string, error) {
	if in.Analytics == nil {
		return "", ErrMissingAnalytics
	}

	a := in.Analytics
	labels := questionnaire.ScaleLabels(in.ScaleType)
	view := sessionView{
		Brand:       r.brand(generatedAt),
		ManagerName: in.ManagerName,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Period:      r.formatDate(in.CreatedAt) + " to " + r.formatDate(in.ExpiresAt),
		ScaleMax:    a.ScaleMax,
		BottomLabel: labels[0],
		TopLabel:    labels[len(labels)-1],
		Analytics:   a,
		Strongest:   questionText(a, a.StrongestQuestion),
		Weakest:     questionText(a, a.WeakestQuestion),
		Category:    a.PerformanceCategory,
	}

	for i, text := range a.Questions {
		view.Questions = append(view.Questions, questionView{
			Number:       i + 1,
			Text:         text,
			Average:      a.QuestionAverages[i],
			Median:       a.QuestionMedians[i],
			Distribution: a.ResponseDistributions[i],
		})
	}
	view.Recommendation = recommendationsFor(a.PerformanceCategory, view.Strongest, view.Weakest)

	return r.execute(r.session, view)
}

func questionText(a *scoring.SessionAnalytics, index int) string {
	if index < 0 || index >= len(a.Questions) {
		return "N/A"
	}
	return a.Questions[index]
}

func recommendationsFor(category, strongest, weakest string) recommendationView {
	switch category {
	case scoring.PerformanceExcellent:
		return recommendationView{
			Headline: "Outstanding Leadership Performance!",
			Intro:    "You're performing at an exceptional level. Your team clearly sees you as an effective leader. Consider these next steps:",
			Items: []recommendation{
				{"Mentor emerging leaders", "Share your successful practices with other managers"},
				{"Lead by example", "Continue modeling the leadership behaviors your team values"},
				{"Expand your influence", "Consider taking on broader leadership responsibilities"},
				{"Stay connected", "Maintain regular feedback loops to sustain this high performance"},
			},
		}
	case scoring.PerformanceGood:
		return recommendationView{
			Headline: "Strong Leadership Foundation",
			Intro:    "You have solid leadership skills with room for targeted improvement. Focus on:",
			Items: []recommendation{
				{"Target your development area", fmt.Sprintf("Pay special attention to %q", weakest)},
				{"Build on your strengths", fmt.Sprintf("Leverage your success in %q", strongest)},
				{"Seek specific feedback", "Have follow-up conversations with your team about improvement areas"},
				{"Practice consistently", "Focus on daily habits that reinforce good leadership behaviors"},
			},
		}
	case scoring.PerformanceFair:
		return recommendationView{
			Headline: "Growth Opportunity Identified",
			Intro:    "There are clear areas where focused development will make a significant impact:",
			Items: []recommendation{
				{"Priority focus", fmt.Sprintf("Concentrate on improving %q", weakest)},
				{"Leadership coaching", "Consider working with a leadership coach for targeted development"},
				{"Skill building", "Invest in specific leadership training programs"},
				{"Regular check-ins", "Schedule monthly feedback sessions with your team"},
			},
		}
	default:
		return recommendationView{
			Headline: "Significant Development Needed",
			Intro:    "This feedback indicates important areas requiring immediate attention:",
			Items: []recommendation{
				{"Structured leadership coaching", "We strongly recommend professional leadership development"},
				{"Focus on core behaviors", "Clarity, accountability, and consistent feedback"},
				{"Team relationship building", "Invest time in understanding your team's needs and perspectives"},
				{"Regular progress reviews", "Implement weekly one-on-ones and monthly team feedback sessions"},
			},
		}
	}
}

func (r *Renderer) execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
