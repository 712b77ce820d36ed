// Command catalogcheck checks a crop catalog and its recommendation table for
// problems that classification would hide: rules that can never match,
// tiers without a recommendation, empty rule sets and implausible thresholds.
//
// Usage:
//
//	go run ./cmd/catalogcheck                         # built-in catalog
//	go run ./cmd/catalogcheck -catalog crops.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/pest-risk/internal/domain"
)

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catalogPath := flag.String("catalog", "", "YAML crop catalog (default: built-in catalog)")
	flag.Parse()

	os.Exit(run(*catalogPath))
}

func run(catalogPath string) int {
	fmt.Println("=== Crop Catalog Check ===")
	fmt.Println()

	catalog, table := domain.DefaultCatalog(), domain.DefaultRecommendations()
	source := "built-in"
	if catalogPath != "" {
		var err error
		catalog, table, err = domain.LoadCatalogFile(catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
			return 1
		}
		source = catalogPath
	}

	phases := check(catalog, table)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Catalog: %s, %d crops, %d recommendations\n", source, catalog.Len(), len(table))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nCatalog check FAILED.")
	return 1
}

func check(catalog *domain.Catalog, table domain.RecommendationTable) []*phase {
	return []*phase{
		checkRuleSets(catalog),
		checkTiers(catalog),
		checkRecommendations(catalog, table),
		checkThresholds(catalog),
		checkShadowing(catalog),
	}
}

func checkRuleSets(catalog *domain.Catalog) *phase {
	p := &phase{name: "Phase 1: Every crop has rules"}
	for _, c := range catalog.Profiles() {
		if len(c.Rules) == 0 {
			p.errorf("%s: no rules, always unknown", c.Name)
		}
	}
	return p
}

func checkTiers(catalog *domain.Catalog) *phase {
	p := &phase{name: "Phase 2: Rule tiers are known"}
	for _, c := range catalog.Profiles() {
		for i, r := range c.Rules {
			if !r.Tier.Known() {
				p.errorf("%s rule %d: unknown tier %q", c.Name, i+1, r.Tier)
			}
		}
	}
	return p
}

func checkRecommendations(catalog *domain.Catalog, table domain.RecommendationTable) *phase {
	p := &phase{name: "Phase 3: Tiers have recommendations"}
	missing := map[domain.RiskTier][]string{}
	for _, c := range catalog.Profiles() {
		for _, r := range c.Rules {
			if table[r.Tier] == "" {
				missing[r.Tier] = append(missing[r.Tier], c.Name)
			}
		}
	}
	for _, tier := range []domain.RiskTier{domain.TierHigh, domain.TierMedium, domain.TierLow} {
		if crops, ok := missing[tier]; ok {
			p.errorf("tier %q has no recommendation (used by %v)", tier, crops)
		}
	}
	return p
}

func checkThresholds(catalog *domain.Catalog) *phase {
	p := &phase{name: "Phase 4: Thresholds in plausible range"}
	for _, c := range catalog.Profiles() {
		for i, r := range c.Rules {
			if r.MinHumidity < 0 || r.MinHumidity > 100 {
				p.errorf("%s rule %d: min humidity %.1f outside 0-100%%", c.Name, i+1, r.MinHumidity)
			}
			if r.MinTemperature < -50 || r.MinTemperature > 60 {
				p.errorf("%s rule %d: min temperature %.1f outside -50-60°C", c.Name, i+1, r.MinTemperature)
			}
		}
	}
	return p
}

func checkShadowing(catalog *domain.Catalog) *phase {
	p := &phase{name: "Phase 5: No rule shadowed by an earlier rule"}
	for _, c := range catalog.Profiles() {
		for _, i := range c.Rules.Shadowed() {
			r := c.Rules[i]
			p.errorf("%s rule %d (%s at %.1f°C/%.0f%%) can never match", c.Name, i+1, r.Tier, r.MinTemperature, r.MinHumidity)
		}
	}
	return p
}
