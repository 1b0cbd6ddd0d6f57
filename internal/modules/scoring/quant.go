// Package scoring provides the per-security sub-score calculators and the
// portfolio score aggregation.
package scoring

import "github.com/aristath/relval/internal/domain"

// SectorRuleSet holds the fundamental thresholds a security is judged
// against. One point per passed rule, five rules total.
type SectorRuleSet struct {
	PEMax           float64
	ROEMin          float64
	DebtToEquityMax float64
	MarginMin       float64
	GrowthMin       float64
}

// SectorRules maps sector names to their rule sets. Sectors without an
// entry fall back to DefaultRules.
var SectorRules = map[string]SectorRuleSet{
	"Technology": {
		PEMax:           30,
		ROEMin:          0.15,
		DebtToEquityMax: 150,
		MarginMin:       0.15,
		GrowthMin:       0.05,
	},
	"Financial Services": {
		PEMax:           15,
		ROEMin:          0.12,
		DebtToEquityMax: 300,
		MarginMin:       0.20,
		GrowthMin:       0.03,
	},
	"Consumer Defensive": {
		PEMax:           25,
		ROEMin:          0.10,
		DebtToEquityMax: 120,
		MarginMin:       0.10,
		GrowthMin:       0.02,
	},
}

// DefaultRules applies to sectors without a dedicated rule set.
var DefaultRules = SectorRuleSet{
	PEMax:           20,
	ROEMin:          0.10,
	DebtToEquityMax: 100,
	MarginMin:       0.10,
	GrowthMin:       0.03,
}

// RulesForSector returns the rule set for a sector, falling back to the
// defaults.
func RulesForSector(sector string) SectorRuleSet {
	if rules, ok := SectorRules[sector]; ok {
		return rules
	}
	return DefaultRules
}

// QuantScore counts how many fundamental rules a security passes (0-5).
// A missing ratio fails its rule; unknown data earns no points.
func QuantScore(ratios domain.Ratios, sector string) float64 {
	rules := RulesForSector(sector)
	score := 0.0

	if ratios.PE != nil && *ratios.PE > 0 && *ratios.PE < rules.PEMax {
		score++
	}
	if ratios.ROE != nil && *ratios.ROE > rules.ROEMin {
		score++
	}
	if ratios.DebtToEquity != nil && *ratios.DebtToEquity > 0 && *ratios.DebtToEquity < rules.DebtToEquityMax {
		score++
	}
	if ratios.Margin != nil && *ratios.Margin > rules.MarginMin {
		score++
	}
	if ratios.RevenueGrowth != nil && *ratios.RevenueGrowth > rules.GrowthMin {
		score++
	}

	return score
}

// FactorBreakdown reports the names of the rules a security passes.
func FactorBreakdown(ratios domain.Ratios, sector string) []string {
	rules := RulesForSector(sector)
	var passed []string

	if ratios.PE != nil && *ratios.PE > 0 && *ratios.PE < rules.PEMax {
		passed = append(passed, "Valuation (P/E)")
	}
	if ratios.ROE != nil && *ratios.ROE > rules.ROEMin {
		passed = append(passed, "Profitability (ROE)")
	}
	if ratios.DebtToEquity != nil && *ratios.DebtToEquity > 0 && *ratios.DebtToEquity < rules.DebtToEquityMax {
		passed = append(passed, "Leverage")
	}
	if ratios.Margin != nil && *ratios.Margin > rules.MarginMin {
		passed = append(passed, "Margins")
	}
	if ratios.RevenueGrowth != nil && *ratios.RevenueGrowth > rules.GrowthMin {
		passed = append(passed, "Growth")
	}

	return passed
}

// RiskFlags returns human-readable warnings derived from the ratios.
func RiskFlags(ratios domain.Ratios) []string {
	var flags []string

	if ratios.PE != nil && *ratios.PE > 30 {
		flags = append(flags, "Valuation risk (high P/E)")
	}
	if ratios.DebtToEquity != nil && *ratios.DebtToEquity > 150 {
		flags = append(flags, "Balance sheet leverage")
	}
	if ratios.RevenueGrowth != nil && *ratios.RevenueGrowth < 0.03 {
		flags = append(flags, "Low growth profile")
	}

	return flags
}

// ScenarioTriggers returns conditional re-rating notes for the report.
func ScenarioTriggers(ratios domain.Ratios) []string {
	var triggers []string

	if ratios.PE != nil && *ratios.PE > 30 {
		triggers = append(triggers, "BUY if P/E falls below 25")
	}
	if ratios.RevenueGrowth != nil && *ratios.RevenueGrowth < 0.10 {
		triggers = append(triggers, "Upgrade if revenue growth re-accelerates >10%")
	}

	return triggers
}

// TurnaroundFlag marks securities whose fundamentals are weak but whose
// growth has turned positive: a cheap name with negative margins and
// recovering revenue.
func TurnaroundFlag(ratios domain.Ratios) bool {
	if ratios.Margin == nil || ratios.RevenueGrowth == nil {
		return false
	}
	return *ratios.Margin < 0 && *ratios.RevenueGrowth > 0.05
}
