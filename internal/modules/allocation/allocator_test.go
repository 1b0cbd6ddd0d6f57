package allocation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/relval/internal/domain"
)

func sec(ticker, sector string, score, volMult, liqCap float64) *domain.Security {
	return &domain.Security{
		Ticker:            ticker,
		Sector:            sector,
		AdjPortfolioScore: score,
		VolMultiplier:     volMult,
		LiquidityCap:      liqCap,
	}
}

func TestAllocateProportional(t *testing.T) {
	a := sec("A.SI", "Industrials", 10, 1, 1)
	b := sec("B.SI", "Industrials", 5, 1, 1)

	NewAllocator(1.0, zerolog.Nop()).Allocate([]*domain.Security{a, b})

	assert.InDelta(t, 2.0/3.0, a.TargetWeight, 1e-9)
	assert.InDelta(t, 1.0/3.0, b.TargetWeight, 1e-9)
}

func TestAllocateSectorCap(t *testing.T) {
	// A is liquidity-capped at 0.25, leaving 0.05 of Tech headroom; B's
	// raw 0.20 weight is clamped to that headroom before renormalization.
	a := sec("A.SI", "Technology", 8, 1, 0.25)
	b := sec("B.SI", "Technology", 2, 1, 1)

	NewAllocator(0.30, zerolog.Nop()).Allocate([]*domain.Security{a, b})

	assert.InDelta(t, 0.25/0.30, a.TargetWeight, 1e-9)
	assert.InDelta(t, 0.05/0.30, b.TargetWeight, 1e-9)
	assert.InDelta(t, 1.0, a.TargetWeight+b.TargetWeight, 1e-9)
}

func TestAllocateZeroScoresFailClosed(t *testing.T) {
	a := sec("A.SI", "Industrials", -2, 1, 1)
	b := sec("B.SI", "Industrials", 0, 1, 1)

	NewAllocator(0.30, zerolog.Nop()).Allocate([]*domain.Security{a, b})

	assert.Zero(t, a.TargetWeight)
	assert.Zero(t, b.TargetWeight)
}

func TestAllocateVolMultiplierScalesComposite(t *testing.T) {
	// Equal composites after the volatility dampener, so equal weights,
	// even though A outranks B on adjusted score.
	a := sec("A.SI", "Industrials", 10, 0.5, 1)
	b := sec("B.SI", "Utilities", 5, 1, 1)

	NewAllocator(1.0, zerolog.Nop()).Allocate([]*domain.Security{a, b})

	assert.InDelta(t, 0.5, a.TargetWeight, 1e-9)
	assert.InDelta(t, 0.5, b.TargetWeight, 1e-9)
}

func TestAllocateLiquidityCapThenRenormalize(t *testing.T) {
	a := sec("A.SI", "Industrials", 9, 1, 0.10)
	b := sec("B.SI", "Utilities", 1, 1, 1)

	NewAllocator(1.0, zerolog.Nop()).Allocate([]*domain.Security{a, b})

	// Pre-renormalization weights are {0.10, 0.10}; renormalized they
	// split the book evenly.
	assert.InDelta(t, 0.5, a.TargetWeight, 1e-9)
	assert.InDelta(t, 0.5, b.TargetWeight, 1e-9)
}

func TestAllocateZeroLiquidityCapGetsNoWeight(t *testing.T) {
	// A cap of zero means the name cannot absorb any capital; its share
	// renormalizes onto the rest of the book.
	a := sec("A.SI", "Industrials", 6, 1, 0)
	b := sec("B.SI", "Utilities", 3, 1, 1)

	NewAllocator(1.0, zerolog.Nop()).Allocate([]*domain.Security{a, b})

	assert.Zero(t, a.TargetWeight)
	assert.InDelta(t, 1.0, b.TargetWeight, 1e-9)
}

func TestAssignStepIsOrderSensitive(t *testing.T) {
	a := NewAllocator(0.30, zerolog.Nop())

	// First claimant takes the full headroom, second gets the remainder;
	// swapping the order swaps the outcome.
	state, w1 := a.assign(sectorExposure{}, "Technology", 0.25, 1)
	state, w2 := a.assign(state, "Technology", 0.20, 1)
	assert.InDelta(t, 0.25, w1, 1e-9)
	assert.InDelta(t, 0.05, w2, 1e-9)

	state2, w3 := a.assign(sectorExposure{}, "Technology", 0.20, 1)
	_, w4 := a.assign(state2, "Technology", 0.25, 1)
	assert.InDelta(t, 0.20, w3, 1e-9)
	assert.InDelta(t, 0.10, w4, 1e-9)
}

func TestAssignStepDoesNotMutateInput(t *testing.T) {
	a := NewAllocator(0.30, zerolog.Nop())

	initial := sectorExposure{"Technology": 0.10}
	_, _ = a.assign(initial, "Technology", 0.15, 1)
	assert.InDelta(t, 0.10, initial["Technology"], 1e-9)
}

func TestAllocateNegativeScoreExcludedButPresent(t *testing.T) {
	a := sec("A.SI", "Industrials", 6, 1, 1)
	b := sec("B.SI", "Industrials", -3, 1, 1)

	NewAllocator(1.0, zerolog.Nop()).Allocate([]*domain.Security{a, b})

	require.Zero(t, b.TargetWeight)
	assert.InDelta(t, 1.0, a.TargetWeight, 1e-9)
}
