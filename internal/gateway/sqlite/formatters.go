package sqlite

import (
	"time"

	"uptask/internal/gateway/sqlite/migrations"
)

// FormatTimeForDB formats a time.Time value as RFC3339 in UTC for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatTimePtrForDB formats a *time.Time value, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses a stored timestamp
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// normalizeTimeValue converts a wire timestamp or time.Time to its stored form.
// A nil value stays NULL.
func normalizeTimeValue(v interface{}) (interface{}, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return FormatTimeForDB(tv), nil
	case *time.Time:
		return FormatTimePtrForDB(tv), nil
	case string:
		if tv == "" {
			return nil, nil
		}
		return migrations.NormalizeTimestamp(tv)
	default:
		return nil, errUnsupportedValue(v, "timestamp")
	}
}
