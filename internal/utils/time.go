package utils

import (
	"time"
)

// MillisToTime converts a Unix millisecond timestamp to a time.Time object
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// Millis returns t as Unix milliseconds
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
