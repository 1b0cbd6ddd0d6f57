package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/relval/internal/domain"
)

func fp(v float64) *float64 { return &v }

func TestQuantScore(t *testing.T) {
	tests := []struct {
		name   string
		ratios domain.Ratios
		sector string
		want   float64
	}{
		{
			name: "all rules pass on default sector",
			ratios: domain.Ratios{
				PE:            fp(12),
				ROE:           fp(0.18),
				DebtToEquity:  fp(40),
				Margin:        fp(0.22),
				RevenueGrowth: fp(0.08),
			},
			sector: "Industrials",
			want:   5,
		},
		{
			name: "missing ratios fail their rules",
			ratios: domain.Ratios{
				PE:  fp(12),
				ROE: fp(0.18),
			},
			sector: "Industrials",
			want:   2,
		},
		{
			name:   "all missing scores zero",
			ratios: domain.Ratios{},
			sector: "Industrials",
			want:   0,
		},
		{
			name: "sector rules relax the PE ceiling for tech",
			ratios: domain.Ratios{
				PE: fp(26),
			},
			sector: "Technology",
			want:   1,
		},
		{
			name: "same PE fails the default ceiling",
			ratios: domain.Ratios{
				PE: fp(26),
			},
			sector: "Industrials",
			want:   0,
		},
		{
			name: "negative PE earns no valuation point",
			ratios: domain.Ratios{
				PE: fp(-8),
			},
			sector: "Industrials",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuantScore(tt.ratios, tt.sector))
		})
	}
}

func TestFactorBreakdownMatchesScore(t *testing.T) {
	ratios := domain.Ratios{
		PE:            fp(14),
		ROE:           fp(0.16),
		Margin:        fp(0.05),
		RevenueGrowth: fp(0.09),
	}

	passed := FactorBreakdown(ratios, "Industrials")
	assert.Equal(t, float64(len(passed)), QuantScore(ratios, "Industrials"))
	assert.Contains(t, passed, "Valuation (P/E)")
	assert.Contains(t, passed, "Growth")
	assert.NotContains(t, passed, "Margins")
}

func TestRiskFlags(t *testing.T) {
	flags := RiskFlags(domain.Ratios{
		PE:            fp(45),
		DebtToEquity:  fp(220),
		RevenueGrowth: fp(0.01),
	})
	assert.Len(t, flags, 3)

	assert.Empty(t, RiskFlags(domain.Ratios{}))
}

func TestTurnaroundFlag(t *testing.T) {
	assert.True(t, TurnaroundFlag(domain.Ratios{Margin: fp(-0.04), RevenueGrowth: fp(0.12)}))
	assert.False(t, TurnaroundFlag(domain.Ratios{Margin: fp(0.04), RevenueGrowth: fp(0.12)}))
	assert.False(t, TurnaroundFlag(domain.Ratios{Margin: fp(-0.04), RevenueGrowth: fp(0.02)}))
	assert.False(t, TurnaroundFlag(domain.Ratios{Margin: fp(-0.04)}))
}

func TestValuationScore(t *testing.T) {
	tests := []struct {
		name   string
		pe     *float64
		median float64
		want   float64
	}{
		{"deep value", fp(8), 15, 1.0},
		{"undervalued", fp(11), 15, 0.8},
		{"slightly cheap", fp(14), 15, 0.6},
		{"fair", fp(18), 15, 0.4},
		{"expensive", fp(25), 15, 0.1},
		{"missing PE is neutral", nil, 15, 0.5},
		{"negative PE is neutral", fp(-3), 15, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ValuationScore(tt.pe, tt.median), 1e-9)
		})
	}
}

func TestAdjustedValuation(t *testing.T) {
	t.Run("bull regime adds the plain bonus", func(t *testing.T) {
		assert.InDelta(t, 0.8, AdjustedValuation(0.6, 0.2, false), 1e-9)
	})

	t.Run("bear regime scales the dividend bonus", func(t *testing.T) {
		assert.InDelta(t, 0.9, AdjustedValuation(0.6, 0.2, true), 1e-9)
	})

	t.Run("capped at one", func(t *testing.T) {
		assert.InDelta(t, 1.0, AdjustedValuation(1.0, 0.3, true), 1e-9)
	})
}

func TestDividendAdjustment(t *testing.T) {
	assert.InDelta(t, 0.3, DividendAdjustment(fp(0.07)), 1e-9)
	assert.InDelta(t, 0.2, DividendAdjustment(fp(0.045)), 1e-9)
	assert.InDelta(t, 0.1, DividendAdjustment(fp(0.03)), 1e-9)
	assert.InDelta(t, 0.0, DividendAdjustment(fp(0.01)), 1e-9)
	assert.InDelta(t, 0.0, DividendAdjustment(nil), 1e-9)
}
