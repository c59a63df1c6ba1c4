package domain

// Tier is one of four coarse score brackets.
type Tier int

const (
	TierKeepPracticing Tier = 1 // [0,40)
	TierFair           Tier = 2 // [40,60)
	TierGood           Tier = 3 // [60,80)
	TierExcellent      Tier = 4 // [80,100]
)

// TierFor maps a percentage to its tier. Lower bounds are inclusive.
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 80:
		return TierExcellent
	case percentage >= 60:
		return TierGood
	case percentage >= 40:
		return TierFair
	default:
		return TierKeepPracticing
	}
}

// Message returns the feedback line shown with a result.
func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "Excellent! You are a quiz master!"
	case TierGood:
		return "Good job! Keep learning!"
	case TierFair:
		return "Not bad! Room for improvement."
	default:
		return "Keep practicing! You can do better!"
	}
}

func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "tier4"
	case TierGood:
		return "tier3"
	case TierFair:
		return "tier2"
	default:
		return "tier1"
	}
}
