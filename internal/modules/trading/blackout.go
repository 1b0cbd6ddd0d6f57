package trading

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/relval/internal/domain"
)

// blackoutWindow is how close to a scheduled earnings release new buys
// are suppressed.
const blackoutWindow = 48 * time.Hour

// EarningsBlackout suppresses buys shortly before earnings releases.
// Unknown or unfetchable earnings dates never block a trade.
type EarningsBlackout struct {
	market domain.MarketDataProvider
	now    func() time.Time
	log    zerolog.Logger
}

// NewEarningsBlackout creates the blackout guard.
func NewEarningsBlackout(market domain.MarketDataProvider, log zerolog.Logger) *EarningsBlackout {
	return &EarningsBlackout{
		market: market,
		now:    time.Now,
		log:    log.With().Str("component", "earnings_blackout").Logger(),
	}
}

// Active reports whether the ticker's next earnings release falls inside
// the blackout window from now.
func (b *EarningsBlackout) Active(ticker string) bool {
	next, err := b.market.NextEarnings(ticker)
	if err != nil {
		b.log.Debug().Err(err).Str("ticker", ticker).Msg("earnings date unavailable, no blackout")
		return false
	}
	if next == nil {
		return false
	}

	now := b.now()
	if next.Before(now) {
		return false
	}
	return next.Sub(now) <= blackoutWindow
}
