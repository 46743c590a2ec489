package models

import "time"

// EpochMillis converts t to the millisecond timestamp stored in history entries
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromEpochMillis converts a stored history timestamp back to local time
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).Local()
}

// FormatEntryTime renders a history timestamp the way listings show it
func FormatEntryTime(ms int64) string {
	return FromEpochMillis(ms).Format("2006-01-02 15:04:05")
}
