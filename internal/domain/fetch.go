package domain

// Fetch is a typed availability result for external data. It distinguishes
// "the provider answered and there is no signal" from "the fetch failed",
// while letting callers keep the default-to-neutral policy either way.
type Fetch[T any] struct {
	Value     T
	Available bool
	Reason    string // Why the value is unavailable; empty when Available
}

// Ok wraps an available value.
func Ok[T any](v T) Fetch[T] {
	return Fetch[T]{Value: v, Available: true}
}

// Unavailable marks a value as missing for the given reason.
func Unavailable[T any](reason string) Fetch[T] {
	return Fetch[T]{Reason: reason}
}

// Or returns the fetched value when available, otherwise the fallback.
func (f Fetch[T]) Or(fallback T) T {
	if f.Available {
		return f.Value
	}
	return fallback
}
