package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime_RoundTrip(t *testing.T) {
	tests := []string{
		"01-01 00:00:00",
		"07-04 10:30:15",
		"12-31 23:59:59",
		"02-29 12:00:00",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			clock, err := ParseClockTime(input)
			require.NoError(t, err)
			assert.Equal(t, input, clock.String())
		})
	}
}

func TestParseClockTime_Malformed(t *testing.T) {
	tests := []string{
		"",
		"not a time",
		"13-01 00:00:00", // month 13
		"00-15 00:00:00", // month 0
		"01-32 00:00:00", // day 32
		"01-01 24:00:00", // hour 24
		"01-01 00:60:00", // minute 60
		"01-01 00:00:60", // second 60
		"2024-01-01 00:00:00",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseClockTime(input)
			assert.Error(t, err)
		})
	}
}

func TestClockTimeOf(t *testing.T) {
	instant := time.Date(2024, time.October, 31, 20, 15, 42, 0, time.UTC)
	clock := ClockTimeOf(instant)

	assert.Equal(t, "10-31 20:15:42", clock.String())
	assert.Equal(t, "10-31", clock.MonthDay())
	assert.Equal(t, "20:15:42", clock.TimeOfDay())
}

func TestAnchor(t *testing.T) {
	clock := ClockTime{Month: time.July, Day: 4, Hour: 10, Minute: 0, Second: 0}

	anchored := clock.Anchor(2030, time.UTC)
	assert.Equal(t, time.Date(2030, time.July, 4, 10, 0, 0, 0, time.UTC), anchored)
}

func TestAnchor_Feb29NormalizesInNonLeapYear(t *testing.T) {
	clock := ClockTime{Month: time.February, Day: 29, Hour: 8, Minute: 0, Second: 0}

	assert.Equal(t, time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC), clock.Anchor(2024, time.UTC))
	assert.Equal(t, time.Date(2023, time.March, 1, 8, 0, 0, 0, time.UTC), clock.Anchor(2023, time.UTC))
}

func TestAnchorDayOfYear(t *testing.T) {
	clock := ClockTime{Hour: 6, Minute: 30, Second: 0}

	// Day 1 is Jan 1, day 60 is Feb 29 in a leap year but Mar 1 otherwise
	assert.Equal(t, time.Date(2025, time.January, 1, 6, 30, 0, 0, time.UTC),
		AnchorDayOfYear(2025, 1, clock, time.UTC))
	assert.Equal(t, time.Date(2024, time.February, 29, 6, 30, 0, 0, time.UTC),
		AnchorDayOfYear(2024, 60, clock, time.UTC))
	assert.Equal(t, time.Date(2023, time.March, 1, 6, 30, 0, 0, time.UTC),
		AnchorDayOfYear(2023, 60, clock, time.UTC))

	// Day 365 always lands on a valid date
	assert.Equal(t, time.Date(2023, time.December, 31, 6, 30, 0, 0, time.UTC),
		AnchorDayOfYear(2023, 365, clock, time.UTC))
	assert.Equal(t, time.Date(2024, time.December, 30, 6, 30, 0, 0, time.UTC),
		AnchorDayOfYear(2024, 365, clock, time.UTC))
}
