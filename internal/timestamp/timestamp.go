// Package timestamp turns the timestamp strings found in imported records into canonical
// UTC instants.
package timestamp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned for empty, non-string or unparseable input.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Layouts with an explicit numeric offset. Fractional seconds are accepted by time.Parse
// after the seconds field even though the layouts do not spell them out.
var offsetLayouts = []string{
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02T15:04-07:00",
	"2006-01-02 15:04-07:00",
	// Hour-only offsets, as emitted by Postgres for whole-hour zones.
	"2006-01-02T15:04:05-07",
	"2006-01-02 15:04:05-07",
	"2006-01-02T15:04-07",
	"2006-01-02 15:04-07",
	// Offsets with seconds.
	"2006-01-02T15:04:05-07:00:00",
	"2006-01-02 15:04:05-07:00:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// bareOffset matches a trailing +HHMM / -HHMM offset that lacks the colon.
var bareOffset = regexp.MustCompile(`^(.*)([+-]\d{2})(\d{2})$`)

// ToUTC parses an ISO-8601 timestamp and returns the same instant in UTC.
//
//	ToUTC("2025-09-11T12:13:18-04:00") -> 2025-09-11 16:13:18 UTC
//	ToUTC("2025-09-11T16:13:18Z")      -> 2025-09-11 16:13:18 UTC
//	ToUTC("2025-09-11T12:13:18+0400")  -> 2025-09-11 08:13:18 UTC
//	ToUTC("2025-09-11T12:13:18+04")    -> 2025-09-11 08:13:18 UTC
//
// A timestamp without any offset is taken to already be UTC.
func ToUTC(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}

	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+00:00"
	}

	t, ok := parse(s)
	if !ok {
		m := bareOffset.FindStringSubmatch(s)
		if m == nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
		}
		if t, ok = parse(m[1] + m[2] + ":" + m[3]); !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
		}
	}
	return t.UTC(), nil
}

// FromValue normalizes a decoded record value. Strings go through ToUTC and time.Time values
// are converted to UTC; anything else is rejected.
func FromValue(v any) (time.Time, error) {
	switch val := v.(type) {
	case string:
		return ToUTC(val)
	case time.Time:
		if val.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalidTimestamp)
		}
		return val.UTC(), nil
	case *time.Time:
		if val == nil {
			return time.Time{}, fmt.Errorf("%w: nil", ErrInvalidTimestamp)
		}
		return FromValue(*val)
	case nil:
		return time.Time{}, fmt.Errorf("%w: missing value", ErrInvalidTimestamp)
	default:
		return time.Time{}, fmt.Errorf("%w: expected string, got %T", ErrInvalidTimestamp, v)
	}
}

func parse(s string) (time.Time, bool) {
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range naiveLayouts {
		// time.Parse without a zone yields UTC, which is the zone-less policy.
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
