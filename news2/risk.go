package news2

// RiskCategory is the clinical risk tier of an assessment.
type RiskCategory string

const (
	Low       RiskCategory = "Low"
	LowMedium RiskCategory = "Low-Medium"
	Medium    RiskCategory = "Medium"
	High      RiskCategory = "High"
)

var responses = map[RiskCategory]string{
	High:      "Urgent assessment by a clinical team / team with critical care competencies, which may include a critical care outreach team",
	Medium:    "Urgent review by ward-based clinician, which may include a critical care outreach team",
	LowMedium: "Clinician review within 12 hours",
	Low:       "Continue routine monitoring",
}

// Categorize derives the risk tier from both scores.  A single parameter at 3
// escalates straight to High regardless of the totals.
func Categorize(crisp int, fuzzy float64, anyExtreme bool) RiskCategory {
	switch {
	case anyExtreme || crisp >= 7 || fuzzy >= 7:
		return High
	case crisp >= 5 || fuzzy >= 5:
		return Medium
	case crisp >= 1 || fuzzy >= 1:
		return LowMedium
	default:
		return Low
	}
}

// Response returns the recommended clinical response for the tier.
func (r RiskCategory) Response() string {
	if resp, ok := responses[r]; ok {
		return resp
	}
	return responses[Low]
}
