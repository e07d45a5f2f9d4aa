package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUTC(t *testing.T) {
	want := time.Date(2025, 9, 11, 16, 13, 18, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"negative offset", "2025-09-11T12:13:18-04:00", want},
		{"zulu", "2025-09-11T16:13:18Z", want},
		{"lowercase zulu", "2025-09-11T16:13:18z", want},
		{"explicit zero offset", "2025-09-11T16:13:18+00:00", want},
		{"offset without colon", "2025-09-11T12:13:18-0400", want},
		{"positive offset without colon", "2025-09-11T21:43:18+0530", want},
		{"space separator", "2025-09-11 12:13:18-04:00", want},
		{"surrounding whitespace", "  2025-09-11T16:13:18Z ", want},
		{"zone-less is taken as utc", "2025-09-11T16:13:18", want},
		{"minutes precision", "2025-09-11T12:13-04:00", time.Date(2025, 9, 11, 16, 13, 0, 0, time.UTC)},
		{"date only", "2025-09-11", time.Date(2025, 9, 11, 0, 0, 0, 0, time.UTC)},
		{"fractional seconds", "2025-09-11T12:13:18.250-04:00", want.Add(250 * time.Millisecond)},
		{"hour-only offset", "2025-09-11T12:13:18-04", want},
		{"hour-only positive offset", "2025-09-11T20:13:18+04", want},
		{"hour-only offset with space", "2025-09-11 12:13:18-04", want},
		{"hour-only offset minutes precision", "2025-09-11T12:13-04", time.Date(2025, 9, 11, 16, 13, 0, 0, time.UTC)},
		{"hour-only offset fractional", "2025-09-11T20:13:18.5+04", want.Add(500 * time.Millisecond)},
		{"offset with seconds", "2025-09-11T21:43:18+05:30:00", want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUTC(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestToUTC_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2025-13-40T00:00:00Z", "2025-09-11T12:13:18+4", "2025-09-11T12:13:18+053000", "1694448798"} {
		t.Run(in, func(t *testing.T) {
			_, err := ToUTC(in)
			assert.ErrorIs(t, err, ErrInvalidTimestamp)
		})
	}
}

func TestToUTC_SameInstantForEquivalentInputs(t *testing.T) {
	a, err := ToUTC("2025-09-11T12:13:18-04:00")
	require.NoError(t, err)
	b, err := ToUTC("2025-09-11T16:13:18Z")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestToUTC_RoundTripThroughOffset(t *testing.T) {
	base := time.Date(2024, 2, 29, 23, 30, 5, 0, time.UTC)
	for _, offset := range []int{-12 * 3600, -4 * 3600, -30 * 60, 0, 5*3600 + 30*60, 14 * 3600} {
		zone := time.FixedZone("", offset)
		original := base.In(zone).Format(time.RFC3339)

		got, err := ToUTC(original)
		require.NoError(t, err)
		assert.Equal(t, original, got.In(zone).Format(time.RFC3339))
	}
}

func TestToUTC_IdempotentOnCanonicalOutput(t *testing.T) {
	first, err := ToUTC("2025-09-11T12:13:18-04:00")
	require.NoError(t, err)

	// Canonical values are re-read as zone-less strings.
	second, err := ToUTC(first.Format("2006-01-02T15:04:05"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFromValue(t *testing.T) {
	got, err := FromValue("2025-09-11T16:13:18Z")
	require.NoError(t, err)
	assert.Equal(t, 16, got.Hour())

	local := time.Date(2025, 9, 11, 12, 13, 18, 0, time.FixedZone("EDT", -4*3600))
	got, err = FromValue(local)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 11, 16, 13, 18, 0, time.UTC), got)

	for _, bad := range []any{nil, 1694448798, 3.5, true, time.Time{}, (*time.Time)(nil)} {
		_, err := FromValue(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "value %v", bad)
	}
}
