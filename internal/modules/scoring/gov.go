package scoring

import "strings"

// sectorGovSensitivity marks how strongly each sector's revenue base is
// tied to public-sector spending.
var sectorGovSensitivity = map[string]float64{
	"Industrials":            1.5,
	"Engineering":            1.5,
	"Construction":           2.0,
	"Infrastructure":         2.0,
	"Utilities":              1.0,
	"Healthcare":             1.0,
	"Technology":             0.5,
	"Financial Services":     0.5,
	"Consumer Defensive":     0.0,
	"Consumer Cyclical":      0.0,
	"Real Estate":            0.5,
	"Communication Services": 0.5,
}

var govHeadlineKeywords = []string{
	"government",
	"ministry",
	"public sector",
	"national",
	"infrastructure",
	"state-owned",
	"grant",
	"subsidy",
}

// GovScore combines the sector's structural public-spending sensitivity
// with evidence of government-linked newsflow. The headline boost is
// capped so noisy feeds cannot dominate the sector prior.
func GovScore(sector string, headlines []string) float64 {
	score := sectorGovSensitivity[sector]

	boost := 0.0
	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, kw := range govHeadlineKeywords {
			if strings.Contains(lower, kw) {
				boost += 0.5
				break
			}
		}
	}
	if boost > 1.0 {
		boost = 1.0
	}

	return score + boost
}
