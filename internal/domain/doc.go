// Package domain models crop pest risk derived from temperature and humidity.
//
// # Crop Catalog
//
// Each crop in the catalog carries an ordered rule set. A rule is a pair of
// inclusive lower bounds plus the risk tier it yields:
//
//	soja:  (>= 30°C, >= 70%) -> alto
//	       (>= 20°C, >= 50%) -> médio
//	       (>= 10°C, >= 30%) -> baixo
//
// Classification walks the rules in declaration order and stops at the first
// rule whose bounds are both met. Authors list the most severe conditions
// first so a lenient rule never masks them. Rules are never sorted. An
// observation below every rule classifies as [TierUnknown].
//
// Crop keys are lower-case ("soja", "feijão"). Display names capitalize the
// first letter only ("Feijão"), matching how the catalog is presented in the
// menu.
//
// # Risk Tiers
//
// The tier set is closed: baixo (low), médio (medium), alto (high). Tier
// labels are kept in Portuguese because they are data shared with the
// persisted report history and the pest_alerts table.
//
// # Recommendations
//
// A [RecommendationTable] maps a tier to action text. Unknown or unmapped
// tiers resolve to [FallbackRecommendation]; resolution never fails.
//
// # Catalog Files
//
// The built-in catalog can be replaced with a YAML file (see
// [LoadCatalogFile]). Rule order in the file is preserved exactly.
//
// # Alert Records
//
// An [AlertRecord] is built only after a crop and city validate and a
// reading has been classified. It is the display-normalized union of the
// [Observation] and its [RiskAssessment]: crop capitalized, city title-cased,
// temperature rounded to two decimals, risk null when unknown.
package domain
