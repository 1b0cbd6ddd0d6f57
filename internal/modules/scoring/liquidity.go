package scoring

// LiquidityCap translates a security's average daily traded value into
// the maximum portfolio weight the allocator may assign it. Unknown
// liquidity gets a conservative cap rather than an exclusion.
func LiquidityCap(avgDailyValue *float64) float64 {
	if avgDailyValue == nil {
		return 0.03
	}

	adv := *avgDailyValue
	switch {
	case adv >= 10_000_000:
		return 0.20
	case adv >= 5_000_000:
		return 0.15
	case adv >= 1_000_000:
		return 0.10
	case adv >= 500_000:
		return 0.06
	default:
		return 0.02
	}
}
