package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Static per-ticker info (sector, ratios) changes slowly
	TTLInfo = 24 * time.Hour

	// Daily bars: one new bar per trading day
	TTLDailyBars = 12 * time.Hour

	// Hourly closes feed the stat-arb scan; keep short so a scan within the
	// same session reuses them but the next session refetches
	TTLHourlyCloses = time.Hour

	// Earnings schedules move rarely but the blackout check is time-critical
	TTLEarningsDates = 6 * time.Hour

	// Correlation matrix is valid for the cycle that computed it
	TTLCorrMatrix = 4 * time.Hour
)
