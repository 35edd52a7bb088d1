package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Clock returns the current time; services take one so tests can pin it.
type Clock func() time.Time

// StartOfWindow returns the instant that opens a trailing window ending at now.
func StartOfWindow(now time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	return now.Add(-window)
}
