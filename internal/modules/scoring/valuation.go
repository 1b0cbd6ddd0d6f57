package scoring

// SectorMedianPE maps sectors to their assumed median trailing P/E.
var SectorMedianPE = map[string]float64{
	"Financial Services":     10,
	"Banks":                  10,
	"Real Estate":            12,
	"REIT":                   12,
	"Industrials":            14,
	"Consumer Defensive":     15,
	"Consumer Cyclical":      18,
	"Technology":             22,
	"Communication Services": 20,
	"Energy":                 10,
	"Utilities":              14,
}

// defaultMedianPE applies to sectors absent from the table.
const defaultMedianPE = 15.0

// MedianPEForSector returns the sector's median P/E, defaulting to 15.
func MedianPEForSector(sector string) float64 {
	if pe, ok := SectorMedianPE[sector]; ok {
		return pe
	}
	return defaultMedianPE
}

// ValuationScore rates a security's P/E against its sector median on a
// step schedule: deeply undervalued 1.0 down to expensive 0.1. Missing or
// non-positive inputs score a neutral 0.5.
func ValuationScore(pe *float64, sectorMedianPE float64) float64 {
	if pe == nil || *pe <= 0 || sectorMedianPE <= 0 {
		return 0.5
	}

	ratio := *pe / sectorMedianPE
	switch {
	case ratio < 0.6:
		return 1.0
	case ratio < 0.8:
		return 0.8
	case ratio < 1.0:
		return 0.6
	case ratio < 1.3:
		return 0.4
	default:
		return 0.1
	}
}

// DividendAdjustment converts a dividend yield into a valuation bonus.
func DividendAdjustment(dividendYield *float64) float64 {
	if dividendYield == nil || *dividendYield <= 0 {
		return 0.0
	}

	switch {
	case *dividendYield >= 0.06:
		return 0.3
	case *dividendYield >= 0.04:
		return 0.2
	case *dividendYield >= 0.025:
		return 0.1
	default:
		return 0.0
	}
}

// AdjustedValuation combines the valuation score with the dividend bonus,
// capped at 1.0. In a bear regime income is worth more, so the bonus is
// scaled by 1.5 before capping.
func AdjustedValuation(valuationScore, dividendAdj float64, bearRegime bool) float64 {
	if bearRegime {
		dividendAdj *= 1.5
	}
	adjusted := valuationScore + dividendAdj
	if adjusted > 1.0 {
		return 1.0
	}
	return adjusted
}
