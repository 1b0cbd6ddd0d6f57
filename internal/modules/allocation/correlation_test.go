package allocation

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/relval/internal/domain"
)

// fakeMarket serves canned daily bars per ticker.
type fakeMarket struct {
	bars map[string][]domain.DailyBar
	err  error
}

func (f *fakeMarket) Info(string) (*domain.SecurityInfo, error) { return nil, errors.New("unused") }

func (f *fakeMarket) DailyBars(ticker, period string) ([]domain.DailyBar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[ticker], nil
}

func (f *fakeMarket) HourlyCloses([]string, string) (map[string][]float64, error) {
	return nil, errors.New("unused")
}

func (f *fakeMarket) NextEarnings(string) (*time.Time, error) { return nil, errors.New("unused") }

// barsFromReturns builds a bar series starting at 100 with the given
// period returns.
func barsFromReturns(returns []float64) []domain.DailyBar {
	bars := []domain.DailyBar{{Close: 100}}
	price := 100.0
	for _, r := range returns {
		price *= 1 + r
		bars = append(bars, domain.DailyBar{Close: price})
	}
	return bars
}

func TestDeduplicatorPenalizesCorrelatedPair(t *testing.T) {
	shared := []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02, -0.005, 0.01}
	inverse := make([]float64, len(shared))
	for i, r := range shared {
		inverse[i] = -r
	}

	market := &fakeMarket{bars: map[string][]domain.DailyBar{
		"A.SI": barsFromReturns(shared),
		"B.SI": barsFromReturns(shared),
		"C.SI": barsFromReturns(inverse),
	}}

	a := sec("A.SI", "Industrials", 10, 1, 1)
	a.TargetWeight = 0.5
	b := sec("B.SI", "Industrials", 5, 1, 1)
	b.TargetWeight = 0.3
	c := sec("C.SI", "Utilities", 3, 1, 1)
	c.TargetWeight = 0.2

	d := NewDeduplicator(market, nil, 0.80, 0.50, zerolog.Nop())
	d.Apply([]*domain.Security{a, b, c})

	// B halves to 0.15, then the book renormalizes over 0.85.
	assert.InDelta(t, 0.5/0.85, a.TargetWeight, 1e-9)
	assert.InDelta(t, 0.15/0.85, b.TargetWeight, 1e-9)
	assert.InDelta(t, 0.2/0.85, c.TargetWeight, 1e-9)
	assert.InDelta(t, 1.0, a.TargetWeight+b.TargetWeight+c.TargetWeight, 1e-9)
}

func TestDeduplicatorCompoundingPenalty(t *testing.T) {
	shared := []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02, -0.005, 0.01}

	market := &fakeMarket{bars: map[string][]domain.DailyBar{
		"A.SI": barsFromReturns(shared),
		"B.SI": barsFromReturns(shared),
		"C.SI": barsFromReturns(shared),
	}}

	a := sec("A.SI", "Industrials", 10, 1, 1)
	a.TargetWeight = 0.4
	b := sec("B.SI", "Industrials", 5, 1, 1)
	b.TargetWeight = 0.4
	c := sec("C.SI", "Industrials", 3, 1, 1)
	c.TargetWeight = 0.2

	d := NewDeduplicator(market, nil, 0.80, 0.50, zerolog.Nop())
	d.Apply([]*domain.Security{a, b, c})

	// C is penalized twice (once by A, once by B): 0.2 * 0.25 = 0.05.
	// B once: 0.2. Renormalized over 0.4 + 0.2 + 0.05 = 0.65.
	assert.InDelta(t, 0.4/0.65, a.TargetWeight, 1e-9)
	assert.InDelta(t, 0.2/0.65, b.TargetWeight, 1e-9)
	assert.InDelta(t, 0.05/0.65, c.TargetWeight, 1e-9)
}

func TestDeduplicatorBypassOnFetchFailure(t *testing.T) {
	market := &fakeMarket{err: errors.New("provider down")}

	a := sec("A.SI", "Industrials", 10, 1, 1)
	a.TargetWeight = 0.6
	b := sec("B.SI", "Industrials", 5, 1, 1)
	b.TargetWeight = 0.4

	d := NewDeduplicator(market, nil, 0.80, 0.50, zerolog.Nop())
	d.Apply([]*domain.Security{a, b})

	assert.InDelta(t, 0.6, a.TargetWeight, 1e-9)
	assert.InDelta(t, 0.4, b.TargetWeight, 1e-9)
}

func TestDeduplicatorUncorrelatedUntouched(t *testing.T) {
	up := []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02, -0.005, 0.01}
	down := make([]float64, len(up))
	for i, r := range up {
		down[i] = -r
	}

	market := &fakeMarket{bars: map[string][]domain.DailyBar{
		"A.SI": barsFromReturns(up),
		"B.SI": barsFromReturns(down),
	}}

	a := sec("A.SI", "Industrials", 10, 1, 1)
	a.TargetWeight = 0.7
	b := sec("B.SI", "Utilities", 5, 1, 1)
	b.TargetWeight = 0.3

	d := NewDeduplicator(market, nil, 0.80, 0.50, zerolog.Nop())
	d.Apply([]*domain.Security{a, b})

	assert.InDelta(t, 0.7, a.TargetWeight, 1e-9)
	assert.InDelta(t, 0.3, b.TargetWeight, 1e-9)
}
