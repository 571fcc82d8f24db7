package feedback

// Tier buckets a score for display.
type Tier string

const (
	TierGood    Tier = "good"
	TierWarning Tier = "warning"
	TierPoor    Tier = "poor"
)

// TierFor maps a 0-100 score to its tier: 80 and above is good, 60 to 79 is
// a warning, anything lower is poor.
func TierFor(score int) Tier {
	switch {
	case score >= 80:
		return TierGood
	case score >= 60:
		return TierWarning
	default:
		return TierPoor
	}
}

// Label is the badge text for a tier.
func (t Tier) Label() string {
	switch t {
	case TierGood:
		return "Strong"
	case TierWarning:
		return "Good Start"
	default:
		return "Needs Work"
	}
}
