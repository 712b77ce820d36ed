package domain

// FallbackRecommendation is returned for unknown or unmapped tiers.
const FallbackRecommendation = "No recommendation available"

// RecommendationTable maps a risk tier to recommended action text.
type RecommendationTable map[RiskTier]string

// DefaultRecommendations returns the built-in recommendation table.
func DefaultRecommendations() RecommendationTable {
	return RecommendationTable{
		TierHigh:   "Apply targeted pest control immediately and inspect the field daily.",
		TierMedium: "Increase monitoring frequency and prepare preventive treatment.",
		TierLow:    "Keep routine monitoring; no treatment needed.",
	}
}

// Resolve returns the action text for tier, or FallbackRecommendation.
func (t RecommendationTable) Resolve(tier RiskTier) string {
	if tier == TierUnknown {
		return FallbackRecommendation
	}
	if text, ok := t[tier]; ok && text != "" {
		return text
	}
	return FallbackRecommendation
}
