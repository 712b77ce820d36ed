package domain

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout accepted by LoadCatalogFile:
//
//	recommendations:
//	  alto: Apply pest control now.
//	crops:
//	  - name: soja
//	    rules:
//	      - {min_temperature: 30, min_humidity: 70, tier: alto}
//	      - {min_temperature: 20, min_humidity: 50, tier: médio}
type catalogFile struct {
	Recommendations map[RiskTier]string `yaml:"recommendations"`
	Crops           []cropEntry         `yaml:"crops"`
}

type cropEntry struct {
	Name  string     `yaml:"name"`
	Rules []RiskRule `yaml:"rules"`
}

// LoadCatalogFile reads a catalog and recommendation table from YAML. When the
// file has no recommendations section the defaults are used.
func LoadCatalogFile(path string) (*Catalog, RecommendationTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes YAML catalog data. Unknown fields and unknown tiers
// are errors.
func ParseCatalog(data []byte) (*Catalog, RecommendationTable, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}

	profiles := make([]CropProfile, 0, len(f.Crops))
	for _, c := range f.Crops {
		if len(c.Rules) == 0 {
			return nil, nil, fmt.Errorf("crop %q has no rules", c.Name)
		}
		for i, r := range c.Rules {
			if !r.Tier.Known() {
				return nil, nil, fmt.Errorf("crop %q rule %d: unknown tier %q", c.Name, i, r.Tier)
			}
		}
		profiles = append(profiles, CropProfile{Name: c.Name, Rules: RuleSet(c.Rules)})
	}

	catalog, err := NewCatalog(profiles...)
	if err != nil {
		return nil, nil, err
	}

	table := DefaultRecommendations()
	if len(f.Recommendations) > 0 {
		table = RecommendationTable{}
		for tier, text := range f.Recommendations {
			if !tier.Known() {
				return nil, nil, fmt.Errorf("recommendation for unknown tier %q", tier)
			}
			table[tier] = text
		}
	}
	return catalog, table, nil
}
