package questionnaire

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed clarity_audit.yaml
var clarityAuditDefinition []byte

// Category groups questions for aggregation and presentation. Categories never weight scores.
type Category struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	Color     string   `yaml:"color" json:"color"`
	Questions []string `yaml:"questions" json:"questions"`
}

// Question is a single statement with its position in the flattened questionnaire
type Question struct {
	Index         int    `json:"index"`
	CategoryID    string `json:"category_id"`
	CategoryTitle string `json:"category_title"`
	Text          string `json:"text"`
}

// Questionnaire is an ordered list of categorized statements answered on one scale
type Questionnaire struct {
	Name       string     `yaml:"name" json:"name"`
	Scale      ScaleType  `yaml:"scale" json:"scale"`
	Categories []Category `yaml:"categories" json:"categories"`

	questions []Question
	index     map[string]int
}

var clarityAudit *Questionnaire

func init() {
	q, err := Parse(clarityAuditDefinition)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded clarity audit definition: %v", err))
	}
	clarityAudit = q
}

// ClarityAudit returns the built-in 16 statement Leadership Clarity Audit
func ClarityAudit() *Questionnaire {
	return clarityAudit
}

// Load reads a questionnaire definition from a YAML file
func Load(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML questionnaire definition
func Parse(data []byte) (*Questionnaire, error) {
	var q Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire YAML: %w", err)
	}

	if q.Scale == "" {
		q.Scale = ScaleLikert5
	}

	if err := q.validate(); err != nil {
		return nil, err
	}

	q.build()
	return &q, nil
}

func (q *Questionnaire) validate() error {
	if !q.Scale.Valid() {
		return fmt.Errorf("unsupported scale type %q", string(q.Scale))
	}
	if len(q.Categories) == 0 {
		return errors.New("questionnaire has no categories")
	}

	seen := make(map[string]bool, len(q.Categories))
	for i, c := range q.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("category %d has no id", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = true

		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("category %q has no title", c.ID)
		}
		if len(c.Questions) == 0 {
			return fmt.Errorf("category %q has no questions", c.ID)
		}
	}
	return nil
}

func (q *Questionnaire) build() {
	q.questions = q.questions[:0]
	q.index = make(map[string]int, len(q.Categories))

	for i, c := range q.Categories {
		q.index[c.ID] = i
		for _, text := range c.Questions {
			q.questions = append(q.questions, Question{
				Index:         len(q.questions),
				CategoryID:    c.ID,
				CategoryTitle: c.Title,
				Text:          text,
			})
		}
	}
}

// Questions returns every question in display order
func (q *Questionnaire) Questions() []Question {
	out := make([]Question, len(q.questions))
	copy(out, q.questions)
	return out
}

// Len is the number of questions
func (q *Questionnaire) Len() int {
	return len(q.questions)
}

// CategoryOf returns the category id of the question at index
func (q *Questionnaire) CategoryOf(index int) (string, bool) {
	if index < 0 || index >= len(q.questions) {
		return "", false
	}
	return q.questions[index].CategoryID, true
}

// Category looks up a category by id
func (q *Questionnaire) Category(id string) (Category, bool) {
	i, ok := q.index[id]
	if !ok {
		return Category{}, false
	}
	return q.Categories[i], true
}

// CategoryIDs returns the category ids in questionnaire order
func (q *Questionnaire) CategoryIDs() []string {
	ids := make([]string, len(q.Categories))
	for i, c := range q.Categories {
		ids[i] = c.ID
	}
	return ids
}

// CategoryTitle returns the display title for id, or id itself when unknown
func (q *Questionnaire) CategoryTitle(id string) string {
	if c, ok := q.Category(id); ok {
		return c.Title
	}
	return id
}
