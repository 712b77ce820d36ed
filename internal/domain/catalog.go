package domain

import (
	"errors"
	"fmt"
	"strings"
)

// RiskTier is a pest risk severity level.
type RiskTier string

const (
	TierUnknown RiskTier = ""
	TierLow     RiskTier = "baixo"
	TierMedium  RiskTier = "médio"
	TierHigh    RiskTier = "alto"
)

// Known reports whether the tier is one of the closed set of levels.
func (t RiskTier) Known() bool {
	switch t {
	case TierLow, TierMedium, TierHigh:
		return true
	default:
		return false
	}
}

// Label returns the upper-case tier for console output, or "Unknown".
func (t RiskTier) Label() string {
	if !t.Known() {
		return "Unknown"
	}
	return strings.ToUpper(string(t))
}

// RiskRule yields Tier when both readings meet the inclusive minimums.
type RiskRule struct {
	MinTemperature float64  `yaml:"min_temperature"`
	MinHumidity    float64  `yaml:"min_humidity"`
	Tier           RiskTier `yaml:"tier"`
}

// Matches reports whether temperature and humidity satisfy the rule.
func (r RiskRule) Matches(temperature, humidity float64) bool {
	return temperature >= r.MinTemperature && humidity >= r.MinHumidity
}

// RuleSet is an ordered list of rules evaluated first-match.
type RuleSet []RiskRule

// FirstMatch returns the first rule in declaration order satisfied by the
// readings.
func (rs RuleSet) FirstMatch(temperature, humidity float64) (RiskRule, bool) {
	for _, r := range rs {
		if r.Matches(temperature, humidity) {
			return r, true
		}
	}
	return RiskRule{}, false
}

// Shadowed returns the indexes of rules that can never match because an
// earlier rule has bounds no stricter on both axes.
func (rs RuleSet) Shadowed() []int {
	var idx []int
	for j := 1; j < len(rs); j++ {
		for i := 0; i < j; i++ {
			if rs[i].MinTemperature <= rs[j].MinTemperature && rs[i].MinHumidity <= rs[j].MinHumidity {
				idx = append(idx, j)
				break
			}
		}
	}
	return idx
}

// CropProfile is a crop and the rules that classify its pest risk.
type CropProfile struct {
	Name  string
	Rules RuleSet
}

// DisplayName is the crop name with its first letter capitalized.
func (p CropProfile) DisplayName() string {
	return capitalize(p.Name)
}

// Catalog holds the crops available for evaluation in declaration order.
type Catalog struct {
	profiles map[string]CropProfile
	order    []string
}

// NewCatalog builds a catalog from profiles. Names are normalized to lower
// case; empty or duplicate names are rejected.
func NewCatalog(profiles ...CropProfile) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, errors.New("catalog has no crops")
	}

	c := &Catalog{
		profiles: make(map[string]CropProfile, len(profiles)),
		order:    make([]string, 0, len(profiles)),
	}
	for _, p := range profiles {
		key := normalizeCropKey(p.Name)
		if key == "" {
			return nil, errors.New("catalog crop with empty name")
		}
		if _, dup := c.profiles[key]; dup {
			return nil, fmt.Errorf("duplicate crop %q", key)
		}
		p.Name = key
		c.profiles[key] = p
		c.order = append(c.order, key)
	}
	return c, nil
}

// Lookup finds a crop by name, ignoring case and surrounding whitespace.
func (c *Catalog) Lookup(name string) (CropProfile, bool) {
	p, ok := c.profiles[normalizeCropKey(name)]
	return p, ok
}

// Profiles returns every crop in declaration order.
func (c *Catalog) Profiles() []CropProfile {
	out := make([]CropProfile, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.profiles[key])
	}
	return out
}

// Len returns the number of crops.
func (c *Catalog) Len() int { return len(c.order) }

func normalizeCropKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultCatalog returns the built-in crop catalog. Within each crop the most
// severe rule comes first.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		profile("soja", 30, 70, 20, 50, 10, 30),
		profile("milho", 28, 75, 22, 60, 15, 40),
		profile("café", 26, 80, 20, 65, 15, 50),
		profile("algodão", 30, 70, 25, 55, 18, 40),
		profile("trigo", 22, 80, 18, 65, 10, 50),
		profile("arroz", 28, 85, 24, 70, 18, 55),
		profile("feijão", 27, 75, 21, 60, 15, 45),
		profile("cana", 30, 75, 24, 60, 18, 45),
		profile("laranja", 28, 80, 22, 65, 15, 50),
		profile("tomate", 25, 85, 20, 70, 15, 55),
		profile("batata", 20, 85, 16, 70, 10, 55),
		profile("mandioca", 30, 70, 25, 55, 20, 40),
		profile("uva", 24, 80, 18, 65, 12, 50),
		profile("banana", 28, 85, 24, 70, 20, 55),
		profile("alface", 24, 85, 18, 70, 12, 55),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// profile builds the standard three-tier rule set: high, medium, low.
func profile(name string, highT, highH, medT, medH, lowT, lowH float64) CropProfile {
	return CropProfile{
		Name: name,
		Rules: RuleSet{
			{MinTemperature: highT, MinHumidity: highH, Tier: TierHigh},
			{MinTemperature: medT, MinHumidity: medH, Tier: TierMedium},
			{MinTemperature: lowT, MinHumidity: lowH, Tier: TierLow},
		},
	}
}
