// Package allocation converts ranked securities into target portfolio
// weights under liquidity and sector concentration constraints, with a
// correlation penalty pass to avoid stacking near-duplicate exposures.
package allocation

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
)

// DefaultMaxSectorWeight caps any single sector's share of the book.
const DefaultMaxSectorWeight = 0.30

// Allocator assigns target weights proportional to volatility-scaled
// adjusted scores, clamped by per-security liquidity caps and the sector
// ceiling.
type Allocator struct {
	maxSectorWeight float64
	log             zerolog.Logger
}

// NewAllocator creates an allocator with the given sector ceiling. A
// non-positive ceiling falls back to the default.
func NewAllocator(maxSectorWeight float64, log zerolog.Logger) *Allocator {
	if maxSectorWeight <= 0 {
		maxSectorWeight = DefaultMaxSectorWeight
	}
	return &Allocator{
		maxSectorWeight: maxSectorWeight,
		log:             log.With().Str("component", "allocator").Logger(),
	}
}

// Allocate computes and sets TargetWeight on each security.
//
// Negative adjusted scores are clipped to zero, the composite weight base
// is the clipped score times the volatility multiplier, and raw weights
// are the composite's share of the composite total. Assignment then walks
// the book in descending adjusted score order so the highest-conviction
// names claim liquidity and sector headroom first. Finally the clamped
// weights are renormalized to sum to one; the renormalized sector sums
// may exceed the ceiling proportionally, which is the accepted cost of
// full capital deployment.
func (a *Allocator) Allocate(securities []*domain.Security) {
	compositeTotal := 0.0
	composites := make(map[string]float64, len(securities))
	for _, sec := range securities {
		sec.TargetWeight = 0

		score := sec.AdjPortfolioScore
		if score < 0 {
			score = 0
		}
		composite := score * sec.VolMultiplier
		composites[sec.Ticker] = composite
		compositeTotal += composite
	}
	if compositeTotal == 0 {
		a.log.Warn().Msg("no securities with positive adjusted score, nothing to allocate")
		return
	}

	ordered := make([]*domain.Security, len(securities))
	copy(ordered, securities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AdjPortfolioScore > ordered[j].AdjPortfolioScore
	})

	exposure := sectorExposure{}
	assignedTotal := 0.0

	for _, sec := range ordered {
		raw := composites[sec.Ticker] / compositeTotal
		if raw == 0 {
			continue
		}

		var weight float64
		exposure, weight = a.assign(exposure, sec.Sector, raw, sec.LiquidityCap)

		sec.TargetWeight = weight
		assignedTotal += weight
	}

	if assignedTotal == 0 {
		return
	}

	for _, sec := range securities {
		sec.TargetWeight /= assignedTotal
	}
}

// sectorExposure tracks cumulative allocated weight per sector during one
// allocation pass.
type sectorExposure map[string]float64

func (e sectorExposure) with(sector string, weight float64) sectorExposure {
	next := make(sectorExposure, len(e)+1)
	for k, v := range e {
		next[k] = v
	}
	next[sector] += weight
	return next
}

// assign is one step of the allocation fold: clamp a raw weight by the
// security's liquidity cap and the sector's remaining headroom, and
// return the updated exposure state with the assigned weight. The step
// never mutates its input, which keeps the ordering dependency
// observable in isolation.
func (a *Allocator) assign(exposure sectorExposure, sector string, rawWeight, liquidityCap float64) (sectorExposure, float64) {
	weight := rawWeight

	if liquidityCap < 0 {
		liquidityCap = 0
	}
	if weight > liquidityCap {
		a.log.Debug().
			Str("sector", sector).
			Float64("raw_weight", rawWeight).
			Float64("liquidity_cap", liquidityCap).
			Msg("weight clamped by liquidity cap")
		weight = liquidityCap
	}

	if exposure[sector]+weight > a.maxSectorWeight {
		headroom := a.maxSectorWeight - exposure[sector]
		if headroom < 0 {
			headroom = 0
		}
		a.log.Debug().
			Str("sector", sector).
			Float64("headroom", headroom).
			Msg("weight clamped by sector ceiling")
		weight = headroom
	}

	return exposure.with(sector, weight), weight
}
