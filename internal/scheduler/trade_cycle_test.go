package scheduler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/relval/internal/domain"
	"github.com/aristath/relval/internal/modules/statarb"
	"github.com/aristath/relval/internal/modules/trading"
)

type fakeBroker struct {
	connectErr error
	equity     float64
	positions  []domain.Position
	orders     []domain.OrderIntent
}

func (b *fakeBroker) Connect() error {
	return b.connectErr
}

func (b *fakeBroker) Connected() bool { return b.connectErr == nil }

func (b *fakeBroker) AccountEquity() (float64, error) { return b.equity, nil }

func (b *fakeBroker) Positions() ([]domain.Position, error) { return b.positions, nil }

func (b *fakeBroker) ResolveContract(ticker string) (*domain.Contract, error) {
	return &domain.Contract{Ticker: ticker, LotSize: 1}, nil
}

func (b *fakeBroker) PlaceOrder(intent domain.OrderIntent) (*domain.BrokerOrderResult, error) {
	b.orders = append(b.orders, intent)
	return &domain.BrokerOrderResult{OrderID: "X", Ticker: intent.Ticker}, nil
}

func (b *fakeBroker) PlaceTrailingStop(ticker string, quantity, trailingPct float64) (*domain.BrokerOrderResult, error) {
	return &domain.BrokerOrderResult{OrderID: "X", Ticker: ticker}, nil
}

type fakeMarket struct {
	prices    map[string]float64
	closesErr error
}

func (m *fakeMarket) Info(ticker string) (*domain.SecurityInfo, error) {
	price, ok := m.prices[ticker]
	if !ok {
		return nil, errors.New("unknown ticker")
	}
	p := price
	return &domain.SecurityInfo{CurrentPrice: &p}, nil
}

func (m *fakeMarket) DailyBars(ticker, period string) ([]domain.DailyBar, error) {
	return nil, errors.New("no bars")
}

func (m *fakeMarket) HourlyCloses(tickers []string, period string) (map[string][]float64, error) {
	if m.closesErr != nil {
		return nil, m.closesErr
	}
	return map[string][]float64{}, nil
}

func (m *fakeMarket) NextEarnings(ticker string) (*time.Time, error) { return nil, nil }

func newCycleJob(broker *fakeBroker, market *fakeMarket, dir string) *TradeCycleJob {
	reconciler := trading.NewReconciler(broker, nil, nil, nil, true, zerolog.Nop())
	return NewTradeCycleJob(TradeCycleConfig{
		Log:         zerolog.Nop(),
		Market:      market,
		Scanner:     statarb.NewScanner(market, 5, zerolog.Nop()),
		Reconciler:  reconciler,
		Broker:      broker,
		TickersFile: filepath.Join(dir, "tickers.txt"),
		PairsFile:   filepath.Join(dir, "pairs.csv"),
	})
}

func TestRun_BrokerAuthFailureIsFatal(t *testing.T) {
	broker := &fakeBroker{connectErr: errors.New("keypair rejected")}
	job := newCycleJob(broker, &fakeMarket{}, t.TempDir())

	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keypair rejected")
	assert.Empty(t, broker.orders)
}

func TestRun_EmptyInputsCompleteCleanly(t *testing.T) {
	broker := &fakeBroker{equity: 100000}
	job := newCycleJob(broker, &fakeMarket{}, t.TempDir())

	require.NoError(t, job.Run())
	assert.Empty(t, broker.orders)
	assert.Equal(t, "trade_cycle", job.Name())
}

func TestExecuteExits_CleanupAndReversion(t *testing.T) {
	broker := &fakeBroker{
		equity: 100000,
		positions: []domain.Position{
			{Ticker: "U96.SI", Quantity: 100},
			{Ticker: "C52.SI", Quantity: 200},
			{Ticker: "D05.SI", Quantity: 300},
		},
	}
	market := &fakeMarket{prices: map[string]float64{
		"U96.SI": 2.50,
		"C52.SI": 12.00,
		"D05.SI": 25.00,
	}}
	job := newCycleJob(broker, market, t.TempDir())

	signals := statarb.Signals{
		Exits:    []string{"U96.SI"},
		Universe: map[string]bool{"U96.SI": true, "D05.SI": true},
	}

	job.executeExits(nil, signals, true, broker.equity)

	require.Len(t, broker.orders, 2)
	byTicker := map[string]domain.OrderIntent{}
	for _, o := range broker.orders {
		byTicker[o.Ticker] = o
	}

	// Reverted pair leg is liquidated.
	reverted := byTicker["U96.SI"]
	assert.Equal(t, domain.ActionSell, reverted.Action)
	assert.Equal(t, 100.0, reverted.Quantity)
	assert.Equal(t, trading.SignalStatArbExit, reverted.SignalType)

	// Holding outside the pair universe is cleaned up.
	cleanup := byTicker["C52.SI"]
	assert.Equal(t, domain.ActionSell, cleanup.Action)
	assert.Equal(t, trading.SignalCleanup, cleanup.SignalType)

	// In-universe leg without an exit signal is held.
	_, traded := byTicker["D05.SI"]
	assert.False(t, traded)
}

func TestExecuteExits_ScreenedHoldingsUntouched(t *testing.T) {
	broker := &fakeBroker{
		equity:    100000,
		positions: []domain.Position{{Ticker: "D05.SI", Quantity: 300}},
	}
	market := &fakeMarket{prices: map[string]float64{"D05.SI": 25.00}}
	job := newCycleJob(broker, market, t.TempDir())

	securities := []*domain.Security{{Ticker: "D05.SI", TargetWeight: 0.10}}
	signals := statarb.Signals{Universe: map[string]bool{"U96.SI": true}}

	job.executeExits(securities, signals, true, broker.equity)
	assert.Empty(t, broker.orders)
}

func TestRun_PriceGapDoesNotLiquidatePairBook(t *testing.T) {
	// The pair table is intact but the provider returns no hourly data.
	// Held pair legs are still in the universe and must not be sold as
	// strays.
	dir := t.TempDir()
	pairsCSV := "asset_1,asset_2,p_value,hedge_ratio\nU96.SI,C52.SI,0.01,1.2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pairs.csv"), []byte(pairsCSV), 0o644))

	broker := &fakeBroker{
		equity:    100000,
		positions: []domain.Position{{Ticker: "U96.SI", Quantity: 100}},
	}
	market := &fakeMarket{prices: map[string]float64{"U96.SI": 2.50}}
	job := newCycleJob(broker, market, dir)

	require.NoError(t, job.Run())
	assert.Empty(t, broker.orders)
}

func TestRun_PriceFetchFailureSkipsCleanup(t *testing.T) {
	dir := t.TempDir()
	pairsCSV := "asset_1,asset_2,p_value,hedge_ratio\nU96.SI,C52.SI,0.01,1.2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pairs.csv"), []byte(pairsCSV), 0o644))

	broker := &fakeBroker{
		equity:    100000,
		positions: []domain.Position{{Ticker: "U96.SI", Quantity: 100}},
	}
	market := &fakeMarket{
		prices:    map[string]float64{"U96.SI": 2.50},
		closesErr: errors.New("provider down"),
	}
	job := newCycleJob(broker, market, dir)

	require.NoError(t, job.Run())
	assert.Empty(t, broker.orders)
}

func TestExecuteEntries_PairEntryOnlyWhenFlat(t *testing.T) {
	broker := &fakeBroker{
		equity:    100000,
		positions: []domain.Position{{Ticker: "U96.SI", Quantity: 100}},
	}
	market := &fakeMarket{prices: map[string]float64{
		"U96.SI": 2.50,
		"C52.SI": 10.00,
	}}
	job := newCycleJob(broker, market, t.TempDir())

	signals := statarb.Signals{Entries: []string{"U96.SI", "C52.SI"}}
	job.executeEntries(nil, signals, broker.equity)

	// Held leg is skipped; flat leg gets the fixed 15% allocation.
	require.Len(t, broker.orders, 1)
	order := broker.orders[0]
	assert.Equal(t, "C52.SI", order.Ticker)
	assert.Equal(t, domain.ActionBuy, order.Action)
	assert.Equal(t, 1500.0, order.Quantity)
	assert.Equal(t, trading.SignalStatArbEntry, order.SignalType)
}

func TestResolveTicker(t *testing.T) {
	universe := map[string]bool{"U96.SI": true, "00700.HK": true}

	tests := []struct {
		name   string
		symbol string
		want   string
	}{
		{"already suffixed and known", "U96.SI", "U96.SI"},
		{"base symbol matches universe", "U96", "U96.SI"},
		{"numeric base padded to HK", "700", "00700.HK"},
		{"unknown alpha defaults to SI", "ABC", "ABC.SI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveTicker(tt.symbol, universe))
		})
	}
}

func TestQuantityFor(t *testing.T) {
	positions := []domain.Position{
		{Ticker: "U96.SI", Quantity: 100},
		{Ticker: "700", Quantity: 500},
	}

	assert.Equal(t, 100.0, quantityFor(positions, "U96.SI"))
	assert.Equal(t, 500.0, quantityFor(positions, "700.HK"))
	assert.Equal(t, 0.0, quantityFor(positions, "D05.SI"))
}
