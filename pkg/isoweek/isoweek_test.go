package isoweek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeksInYear(t *testing.T) {
	cases := map[int]int{
		2015: 53, // starts on Thursday
		2016: 52,
		2020: 53, // leap year starting on Wednesday
		2021: 52,
		2024: 52,
		2026: 53,
		2027: 52,
	}
	for year, want := range cases {
		assert.Equal(t, want, WeeksInYear(year), "year %d", year)
	}
}

func TestWeekOfDate_YearBoundary(t *testing.T) {
	// 2024-12-30 is a Monday belonging to week 1 of ISO year 2025.
	week, isoYear := WeekOfDate(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, week)
	assert.Equal(t, 2025, isoYear)

	// 2021-01-01 is a Friday belonging to week 53 of ISO year 2020.
	week, isoYear = WeekOfDate(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 53, week)
	assert.Equal(t, 2020, isoYear)
}

func TestMondayOfWeek(t *testing.T) {
	// Week 1 of 2025 starts on 2024-12-30.
	monday := MondayOfWeek(2025, 1)
	assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), monday)

	// Week 53 of 2020 starts on 2020-12-28.
	monday = MondayOfWeek(2020, 53)
	assert.Equal(t, time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC), monday)
}

func TestRoundTrip(t *testing.T) {
	for year := 2000; year <= 2035; year++ {
		for week := 1; week <= WeeksInYear(year); week++ {
			monday := MondayOfWeek(year, week)
			require.Equal(t, time.Monday, monday.Weekday())
			gotWeek, gotYear := WeekOfDate(monday)
			require.Equal(t, week, gotWeek, "year %d week %d", year, week)
			require.Equal(t, year, gotYear, "year %d week %d", year, week)
		}
	}
}

func TestSundayOfWeek(t *testing.T) {
	sunday := SundayOfWeek(2025, 1)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), sunday)
	assert.Equal(t, time.Sunday, sunday.Weekday())
}
