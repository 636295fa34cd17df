package util

import "time"

// NowUTC exposes time.Now for deterministic testing. The value is truncated to
// microseconds so it survives a Postgres TIMESTAMPTZ round trip unchanged.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
