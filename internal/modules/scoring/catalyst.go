package scoring

import "strings"

// CatalystKeyword pairs a headline pattern with its catalyst weight.
// The table is an ordered list so the matching semantics are explicit:
// every matching keyword contributes its weight (sum-all), unlike event
// classification which stops at the first match. That asymmetry is
// deliberate and load-bearing: a headline can carry several catalysts but
// belongs to exactly one event class.
type CatalystKeyword struct {
	Pattern string
	Weight  float64
}

// CatalystKeywords is the ordered catalyst dictionary.
var CatalystKeywords = []CatalystKeyword{
	// very strong catalysts
	{"contract", 2.0},
	{"contract win", 2.5},
	{"award", 2.0},
	{"acquisition", 2.0},
	{"divestment", 2.0},
	{"asset sale", 2.5},
	{"strategic review", 2.5},
	{"spin-off", 2.5},

	// moderate catalysts
	{"government", 1.5},
	{"policy", 1.5},
	{"tender", 1.5},
	{"regulatory approval", 1.5},
	{"expansion", 1.0},
	{"joint venture", 1.0},

	// softer / early signals
	{"exploring", 0.5},
	{"reviewing options", 0.5},
}

// MaxCatalystScore caps the summed catalyst weight per security.
const MaxCatalystScore = 5.0

// CatalystScore sums the weights of every catalyst keyword appearing in
// the headlines, capped at MaxCatalystScore. Each keyword is reported as a
// trigger at most once.
func CatalystScore(headlines []string) (float64, []string) {
	score := 0.0
	seen := make(map[string]bool)
	var triggers []string

	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, kw := range CatalystKeywords {
			if strings.Contains(lower, kw.Pattern) {
				score += kw.Weight
				if !seen[kw.Pattern] {
					seen[kw.Pattern] = true
					triggers = append(triggers, kw.Pattern)
				}
			}
		}
	}

	if score > MaxCatalystScore {
		score = MaxCatalystScore
	}
	return score, triggers
}

// OrderMomentum counts order-win classified headlines and maps the count
// to a momentum score with a descriptive signal.
func OrderMomentum(headlines []string) (float64, string) {
	count := 0
	for _, h := range headlines {
		if ClassifyEvent(h) == EventOrderWin {
			count++
		}
	}

	switch {
	case count >= 3:
		return 2, "Strong order momentum"
	case count >= 1:
		return 1, "Initial order recovery"
	default:
		return 0, ""
	}
}
