package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastNDays(t *testing.T) {
	period := LastNDays(30)
	require.NoError(t, period.Validate())

	now := time.Now().UTC()
	assert.Equal(t, 0, period.Start.Hour())
	assert.Equal(t, 0, period.Start.Minute())
	assert.True(t, period.Contains(now.Add(-time.Minute)))

	// n=1 covers today only
	today := LastNDays(1)
	assert.Equal(t, now.Day(), today.Start.Day())
}

func TestTodayIsSubsetOfWeekAndMonth(t *testing.T) {
	day := Today()
	week := ThisISOWeek()
	month := ThisMonth()

	require.NoError(t, day.Validate())
	require.NoError(t, week.Validate())
	require.NoError(t, month.Validate())

	assert.False(t, day.Start.Before(week.Start))
	assert.False(t, week.End.Before(day.End))
	assert.False(t, day.Start.Before(month.Start))
	assert.False(t, month.End.Before(day.End))
}

func TestThisISOWeekStartsOnMonday(t *testing.T) {
	week := ThisISOWeek()
	assert.Equal(t, time.Monday, week.Start.Weekday())
	assert.Equal(t, 7*24*time.Hour, week.End.Sub(week.Start))
}

func TestPeriodContains(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := Period{Start: start, End: start.AddDate(0, 0, 1)}

	assert.True(t, period.Contains(start))
	assert.True(t, period.Contains(start.Add(23*time.Hour)))
	assert.False(t, period.Contains(period.End))
	assert.False(t, period.Contains(start.Add(-time.Second)))
}
