package scoring

var clarityFeedbackBands = []FeedbackBand{
	{
		Min: 4.5,
		Feedback: Feedback{
			Title:       "Exceptional Leadership Team",
			Description: "Your leadership team is performing at an exceptional level. You have the foundation for sustained organisational success and growth.",
			ActionItems: []string{
				"Document your leadership practices to create a playbook for future leaders",
				"Mentor other leadership teams in your organisation or industry",
				"Focus on innovation and future growth opportunities",
			},
		},
	},
	{
		Min: 3.5,
		Feedback: Feedback{
			Title:       "Strong Leadership Team",
			Description: "Your leadership team is performing well with clear strengths. There are specific areas where targeted improvements can take you from good to great.",
			ActionItems: []string{
				"Build on your strengths while addressing your lowest-scoring category",
				"Implement regular leadership team effectiveness reviews",
				"Create development plans for each leader that align with team goals",
			},
		},
	},
	{
		Min: 2.5,
		Feedback: Feedback{
			Title:       "Developing Leadership Team",
			Description: "Your leadership team has a foundation to build upon, but significant improvements are needed in several areas to drive organisational success.",
			ActionItems: []string{
				"Prioritise addressing your lowest-scoring category immediately",
				"Establish clear leadership team operating principles",
				"Consider leadership coaching for key team members",
			},
		},
	},
	{
		Min: 0,
		Feedback: Feedback{
			Title:       "Leadership Team Needs Significant Attention",
			Description: "Your leadership team is facing substantial challenges that require immediate attention to avoid negative impacts on organisational performance.",
			ActionItems: []string{
				"Conduct a comprehensive leadership team reset",
				"Bring in external expertise to facilitate improvement",
				"Create 30/60/90 day improvement plans with clear accountability",
			},
		},
	},
}

// high, mid, low
var categoryNarratives = map[string][3]string{
	"team-performance": {
		"Your leadership team excels at execution and consistently achieves strategic objectives. Continue to document and share your effective decision-making and problem-solving approaches.",
		"Your leadership team has solid performance foundations. Focus on improving decision-making speed and translating strategy into clearer action plans.",
		"Your leadership team struggles with consistent execution. Prioritise establishing clearer decision-making processes and accountability for strategic objectives.",
	},
	"values-culture": {
		"Your leadership team effectively models values and creates a positive culture. Continue strengthening your communication of the 'why' behind decisions.",
		"Your leadership team has a foundation of positive culture. Work on more consistently modeling core values and recognising team contributions.",
		"Your leadership team needs to prioritise culture-building. Start by clearly defining and modeling your core values and improving psychological safety.",
	},
	"leadership-alignment": {
		"Your leadership team demonstrates strong alignment and unity. Continue refining role clarity and maintaining your effective conflict resolution practices.",
		"Your leadership team has moderate alignment. Focus on improving how you present a unified message and manage internal disagreements constructively.",
		"Your leadership team shows significant misalignment. Prioritise clarifying strategic priorities and establishing healthy conflict resolution processes.",
	},
	"people-retention": {
		"Your leadership team excels at developing people and maintaining engagement. Continue your strong practices in talent development and feedback.",
		"Your leadership team has solid people practices. Enhance your approach to identifying high-potential talent and providing more regular feedback.",
		"Your leadership team needs to prioritise talent development. Establish consistent feedback processes and create clearer growth pathways for employees.",
	},
}

// CategoryNarrative returns the fixed commentary for a category score.
// Unknown categories have no narrative.
func CategoryNarrative(categoryID string, score float64) string {
	texts, ok := categoryNarratives[categoryID]
	if !ok {
		return ""
	}
	switch {
	case score >= 4:
		return texts[0]
	case score >= 3:
		return texts[1]
	default:
		return texts[2]
	}
}
