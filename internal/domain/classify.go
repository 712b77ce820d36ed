package domain

// Classify returns the tier of the first rule in p.Rules satisfied by the
// readings, or TierUnknown.
func Classify(p CropProfile, temperature, humidity float64) RiskTier {
	rule, ok := p.Rules.FirstMatch(temperature, humidity)
	if !ok {
		return TierUnknown
	}
	return rule.Tier
}

// Assess classifies the observation and resolves its recommendation.
func Assess(p CropProfile, obs Observation, table RecommendationTable) RiskAssessment {
	tier := Classify(p, obs.Temperature, obs.Humidity)
	return RiskAssessment{
		Tier:           tier,
		Recommendation: table.Resolve(tier),
	}
}
