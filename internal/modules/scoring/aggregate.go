package scoring

// Sub-score weights for the composite portfolio score.
const (
	WeightQuant     = 1.2
	WeightQual      = 1.0
	WeightCatalyst  = 1.5
	WeightOrder     = 1.2
	WeightGov       = 0.5
	WeightValuation = 2.0
	WeightTechnical = 1.0
)

// maxDividendBoost caps how much yield can inflate the adjusted score.
const maxDividendBoost = 0.06

// PortfolioScore combines the sub-scores into the headline ranking
// figure. The technical component only participates when technical
// signals are enabled; callers pass zero otherwise.
func PortfolioScore(quant, qual, catalyst, order, gov, adjValuation, technical float64) float64 {
	return quant*WeightQuant +
		qual*WeightQual +
		catalyst*WeightCatalyst +
		order*WeightOrder +
		gov*WeightGov +
		adjValuation*WeightValuation +
		technical*WeightTechnical
}

// AdjustedPortfolioScore applies the dividend boost and volatility
// multiplier to the composite score. Dividend yield is a fraction
// (0.04 for 4%) and is capped before use.
func AdjustedPortfolioScore(portfolioScore float64, dividendYield *float64, volMultiplier float64) float64 {
	boost := 0.0
	if dividendYield != nil && *dividendYield > 0 {
		boost = *dividendYield
		if boost > maxDividendBoost {
			boost = maxDividendBoost
		}
	}
	return portfolioScore * (1 + boost) * volMultiplier
}
