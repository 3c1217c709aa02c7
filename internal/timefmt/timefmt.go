package timefmt

import (
	"strings"
	"time"

	"fieldaudit/internal/faults"
)

// Wire is the timestamp layout used across the sync protocol and local
// storage: ISO-8601 with millisecond precision and a numeric UTC offset.
const Wire = "2006-01-02T15:04:05.000-0700"

// wireZulu accepts the Z suffix the server emits interchangeably with +0000.
const wireZulu = "2006-01-02T15:04:05.000Z"

// Format renders a timestamp in the wire layout.
func Format(t time.Time) string {
	return t.Format(Wire)
}

// FormatPtr renders an optional timestamp, returning "" for nil.
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// Parse reads a wire timestamp. The Z and +HHMM offset forms parse
// identically; fractional seconds are optional.
func Parse(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, faults.Serialization("empty timestamp", nil)
	}
	layouts := []string{
		Wire,
		wireZulu,
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		time.RFC3339Nano,
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, faults.Serialization("invalid timestamp "+trimmed, lastErr)
}

// ParsePtr reads an optional wire timestamp, mapping "" to nil.
func ParsePtr(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := Parse(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
