package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeriveDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{name: "single day", start: "2025-01-10", end: "2025-01-10", want: 1},
		{name: "three days", start: "2025-01-10", end: "2025-01-12", want: 3},
		{name: "month boundary", start: "2025-01-30", end: "2025-02-02", want: 4},
		{name: "leap day", start: "2024-02-28", end: "2024-03-01", want: 3},
		{name: "year boundary", start: "2024-12-30", end: "2025-01-02", want: 4},
		{name: "inverted range", start: "2025-01-12", end: "2025-01-10", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := DeriveDays(7, date(tt.start), date(tt.end))
			require.Len(t, days, tt.want)

			for i, day := range days {
				assert.Equal(t, uint(7), day.EventID)
				assert.Equal(t, i+1, day.DayNumber, "day numbers must be 1-based and contiguous")
				assert.Equal(t, time.UTC, day.EventDate.Location())
				assert.Equal(t, 0, day.EventDate.Hour())
				if i > 0 {
					assert.Equal(t, 24*time.Hour, day.EventDate.Sub(days[i-1].EventDate))
				}
			}
		})
	}
}

func TestDeriveDaysDSTImmune(t *testing.T) {
	// A range parsed in a DST-shifting zone still yields one row per
	// calendar day once normalized to UTC midnight.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2025, 3, 8, 23, 0, 0, 0, loc) // DST begins Mar 9
	end := time.Date(2025, 3, 10, 1, 0, 0, 0, loc)

	days := DeriveDays(1, start, end)
	require.Len(t, days, 2)
	assert.Equal(t, date("2025-03-09"), days[0].EventDate)
	assert.Equal(t, date("2025-03-10"), days[1].EventDate)
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2025, 6, 15, 18, 30, 45, 123, time.FixedZone("NPT", 5*3600+45*60))
	got := NormalizeDate(in)
	assert.Equal(t, date("2025-06-15"), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, date("2025-01-10"), got)

	_, err = ParseDate("10/01/2025")
	assert.Error(t, err)
}
