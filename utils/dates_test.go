package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2025-03-15 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), got)

	// RFC3339 keeps the UTC calendar day
	got, err = ParseDate("2025-03-15T23:10:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("15/03/2025")
	assert.Error(t, err)

	none, err := ParseOptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDueDateIn(t *testing.T) {
	feb, err := ParseYearMonth("2025-02")
	require.NoError(t, err)
	leapFeb, err := ParseYearMonth("2024-02")
	require.NoError(t, err)

	cases := []struct {
		month time.Time
		day   int
		want  string
	}{
		{feb, 10, "2025-02-10"},
		{feb, 31, "2025-02-28"},
		{leapFeb, 31, "2024-02-29"},
		{feb, 0, "2025-02-01"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DueDateIn(c.month, c.day).Format(DateLayout))
	}
}

func TestMonthHelpers(t *testing.T) {
	_, err := ParseYearMonth("2025-13")
	assert.Error(t, err)

	dec, err := ParseYearMonth("2024-12")
	require.NoError(t, err)
	start, end := MonthRange(dec)
	assert.Equal(t, "2024-12-01", start.Format(DateLayout))
	assert.Equal(t, "2025-01-01", end.Format(DateLayout))
	assert.Equal(t, "2024-12", YearMonthOf(start))
	assert.Equal(t, start, TruncateDay(time.Date(2024, 12, 1, 18, 45, 0, 0, time.UTC)))
}
