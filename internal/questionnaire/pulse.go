package questionnaire

import "strings"

// MaxLikertQuestions is the number of leading session questions answered on the Likert scale.
// The question after them, if present, is the open-text prompt.
const MaxLikertQuestions = 10

// OpenTextPrompt is the default Start/Stop/Keep question asked after the Likert statements
const OpenTextPrompt = "From your perspective, what should I:\n\nStart doing,\n\nStop doing,\n\nKeep doing?\n\nFeel free to answer one or all three, your feedback helps me lead better."

var defaultPulseQuestions = []string{
	"My manager communicates clearly and effectively.",
	"My manager fosters a culture of trust and respect.",
	"I feel supported by my manager in my role.",
	"My manager gives constructive feedback.",
	"My manager models accountability and ownership.",
	"My manager listens actively and responds to concerns.",
	"My manager sets clear goals and expectations.",
	"My manager leads by example.",
	"My manager encourages growth and development.",
	"My manager recognizes individual contributions.",
	OpenTextPrompt,
}

// DefaultPulseQuestions returns the default manager feedback questions
func DefaultPulseQuestions() []string {
	out := make([]string, len(defaultPulseQuestions))
	copy(out, defaultPulseQuestions)
	return out
}

// SplitPulseQuestions separates session questions into the Likert statements and the
// optional open-text prompt. Entries past the open-text prompt are ignored.
func SplitPulseQuestions(questions []string) (likert []string, openText string) {
	if len(questions) <= MaxLikertQuestions {
		return questions, ""
	}
	return questions[:MaxLikertQuestions], questions[MaxLikertQuestions]
}

// CleanQuestions trims every question and drops the blank ones
func CleanQuestions(questions []string) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}
