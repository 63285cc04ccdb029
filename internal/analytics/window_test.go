package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindows(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2026, time.January, 3, 0, 30, 0, 0, loc)

	w := NewWindows(now)

	assert.Equal(t, time.Date(2026, time.January, 3, 0, 0, 0, 0, loc), w.Today)
	assert.Equal(t, time.Date(2026, time.January, 2, 0, 0, 0, 0, loc), w.Yesterday)
	assert.Equal(t, time.Date(2025, time.December, 27, 0, 0, 0, 0, loc), w.SevenDaysAgo)
	assert.Equal(t, time.Date(2025, time.December, 20, 0, 0, 0, 0, loc), w.FourteenDaysAgo)
	assert.Equal(t, time.Date(2025, time.December, 4, 0, 0, 0, 0, loc), w.ThirtyDaysAgo)
}

func TestLastDays(t *testing.T) {
	w := NewWindows(time.Date(2026, time.March, 18, 15, 0, 0, 0, time.UTC))

	days := w.LastDays(7)
	require.Len(t, days, 7)
	assert.Equal(t, "3/12", days[0].Label())
	assert.Equal(t, "Thu", days[0].Weekday())
	assert.Equal(t, "3/18", days[6].Label())
	assert.Equal(t, "Wed", days[6].Weekday())

	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].End.Add(time.Nanosecond), days[i].Start)
	}
	last := days[6].Range()
	assert.True(t, last.Contains(time.Date(2026, time.March, 18, 23, 59, 59, 0, time.UTC)))
	assert.False(t, last.Contains(time.Date(2026, time.March, 19, 0, 0, 0, 0, time.UTC)))

	assert.Empty(t, w.LastDays(0))
}

func TestTimeRangeContains(t *testing.T) {
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	assert.True(t, TimeRange{}.Contains(from))
	assert.True(t, Since(from).Contains(from))
	assert.False(t, Since(from).Contains(from.Add(-time.Second)))
	assert.True(t, Between(from, to).Contains(to))
	assert.False(t, Between(from, to).Contains(to.Add(time.Nanosecond)))
}
