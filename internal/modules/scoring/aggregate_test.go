package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTechnicalScore(t *testing.T) {
	t.Run("steady uptrend", func(t *testing.T) {
		closes := make([]float64, 250)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		res := TechnicalScore(closes)
		assert.Equal(t, TrendStrongUp, res.Trend)
		// the overbought RSI knocks one point off the regime score
		assert.Equal(t, 1.0, res.Score)
		assert.Greater(t, res.RSI, 70.0)
	})

	t.Run("steady downtrend", func(t *testing.T) {
		closes := make([]float64, 250)
		for i := range closes {
			closes[i] = 500 - float64(i)
		}

		res := TechnicalScore(closes)
		assert.Equal(t, TrendStrongDown, res.Trend)
		assert.Equal(t, -1.0, res.Score)
		assert.Less(t, res.RSI, 30.0)
	})

	t.Run("insufficient history is neutral", func(t *testing.T) {
		res := TechnicalScore([]float64{10, 11, 12})
		assert.Zero(t, res.Score)
		assert.Equal(t, TrendNeutral, res.Trend)
		assert.Equal(t, 50.0, res.RSI)
	})
}

func TestVolMultiplier(t *testing.T) {
	calm := make([]float64, 35)
	for i := range calm {
		calm[i] = 100 + 0.01*float64(i)
	}

	wild := make([]float64, 35)
	for i := range wild {
		if i%2 == 0 {
			wild[i] = 100
		} else {
			wild[i] = 140
		}
	}

	t.Run("calm series keeps full sizing", func(t *testing.T) {
		assert.InDelta(t, 1.0, VolMultiplier(calm, false), 1e-9)
	})

	t.Run("wild series is halved", func(t *testing.T) {
		assert.InDelta(t, 0.5, VolMultiplier(wild, false), 1e-9)
	})

	t.Run("bear regime tightens further", func(t *testing.T) {
		assert.InDelta(t, 0.8, VolMultiplier(calm, true), 1e-9)
		assert.InDelta(t, 0.4, VolMultiplier(wild, true), 1e-9)
	})

	t.Run("no history defaults to one", func(t *testing.T) {
		assert.InDelta(t, 1.0, VolMultiplier(nil, false), 1e-9)
	})
}

func TestLiquidityCap(t *testing.T) {
	tests := []struct {
		name string
		adv  *float64
		want float64
	}{
		{"deep liquidity", fp(25_000_000), 0.20},
		{"good liquidity", fp(6_000_000), 0.15},
		{"moderate", fp(2_000_000), 0.10},
		{"thin", fp(700_000), 0.06},
		{"illiquid", fp(100_000), 0.02},
		{"unknown", nil, 0.03},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LiquidityCap(tt.adv), 1e-9)
		})
	}
}

func TestGovScore(t *testing.T) {
	t.Run("sector prior only", func(t *testing.T) {
		assert.InDelta(t, 2.0, GovScore("Construction", nil), 1e-9)
		assert.InDelta(t, 0.0, GovScore("Consumer Cyclical", nil), 1e-9)
		assert.InDelta(t, 0.0, GovScore("Unknown Sector", nil), 1e-9)
	})

	t.Run("headline boost is capped", func(t *testing.T) {
		headlines := []string{
			"Ministry awards infrastructure grant",
			"Government announces public sector spending plan",
			"State-owned partner signs framework deal",
		}
		assert.InDelta(t, 3.0, GovScore("Construction", headlines), 1e-9)
	})
}

func TestPortfolioScore(t *testing.T) {
	score := PortfolioScore(4, 2, 3, 1, 1.5, 0.8, 1)
	want := 4*1.2 + 2*1.0 + 3*1.5 + 1*1.2 + 1.5*0.5 + 0.8*2.0 + 1*1.0
	assert.InDelta(t, want, score, 1e-9)
}

func TestAdjustedPortfolioScore(t *testing.T) {
	t.Run("dividend boost applied", func(t *testing.T) {
		got := AdjustedPortfolioScore(10, fp(0.04), 1.0)
		assert.InDelta(t, 10.4, got, 1e-9)
	})

	t.Run("dividend boost capped", func(t *testing.T) {
		got := AdjustedPortfolioScore(10, fp(0.09), 1.0)
		assert.InDelta(t, 10.6, got, 1e-9)
	})

	t.Run("vol multiplier dampens", func(t *testing.T) {
		got := AdjustedPortfolioScore(10, nil, 0.5)
		assert.InDelta(t, 5.0, got, 1e-9)
	})

	t.Run("nil yield means no boost", func(t *testing.T) {
		got := AdjustedPortfolioScore(10, nil, 1.0)
		assert.InDelta(t, 10.0, got, 1e-9)
	})
}
