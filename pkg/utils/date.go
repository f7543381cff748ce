package utils

import (
	"time"
)

// TimeNowUTC returns the current time in UTC truncated to microseconds, the
// precision Postgres keeps for timestamptz.
func TimeNowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
