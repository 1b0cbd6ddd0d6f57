package screener

import (
	"strings"

	"github.com/aristath/relval/internal/domain"
)

// Decision labels emitted by the ladder.
const (
	DecisionCoreLong        = "CORE LONG"
	DecisionCatalystBuy     = "CATALYST BUY"
	DecisionValueAccumulate = "VALUE ACCUMULATE"
	DecisionQualityHold     = "QUALITY HOLD"
	DecisionAvoidExit       = "AVOID / EXIT"
	DecisionNeutralWatch    = "NEUTRAL / WATCH"
)

// Decide runs the decision ladder over a fully scored security and
// returns the decision with its rationale. Rules are checked top down;
// the first matching rung wins.
func Decide(sec *domain.Security, orderSignal string) (string, string) {
	var rationale []string
	if sec.OrderScore > 0 && orderSignal != "" {
		rationale = append(rationale, orderSignal)
	}
	if sec.CatalystScore >= 3 {
		rationale = append(rationale, "Strong near-term catalyst")
	}
	if sec.QuantScore >= 3 {
		rationale = append(rationale, "Solid fundamentals")
	}
	if sec.QualScore < 0 {
		rationale = append(rationale, "Negative sentiment risk")
	}
	if sec.AdjValuation >= 0.8 {
		rationale = append(rationale, "Attractive valuation vs sector")
	}
	if sec.DividendYield != nil && *sec.DividendYield >= 0.04 {
		rationale = append(rationale, "Attractive dividend yield")
	}

	var decision string
	switch {
	case sec.QuantScore >= 4 && sec.QualScore >= 2 && sec.AdjValuation >= 0.5 && sec.TechScore > 0:
		decision = DecisionCoreLong
	case sec.CatalystScore >= 3 && sec.QualScore >= 2:
		decision = DecisionCatalystBuy
	case sec.AdjValuation >= 0.8 && (sec.QualScore >= 1 || sec.RSI < 30):
		decision = DecisionValueAccumulate
	case sec.QuantScore >= 4:
		decision = DecisionQualityHold
	case sec.QualScore <= -2 || (sec.QuantScore <= 1 && sec.AdjValuation <= 0.3) || sec.TechScore <= -2:
		decision = DecisionAvoidExit
	default:
		decision = DecisionNeutralWatch
	}

	text := "No clear upside drivers"
	if len(rationale) > 0 {
		text = strings.Join(rationale, "; ")
	}
	return decision, text
}
