package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		month int
		year  int
	}{
		{"september maps to month one", time.Date(2025, time.September, 20, 10, 0, 0, 0, time.UTC), 1, 2018},
		{"december stays in first tertile", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), 4, 2018},
		{"january crosses gregorian year", time.Date(2026, time.January, 15, 8, 30, 0, 0, time.UTC), 5, 2018},
		{"march maps to month seven", time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC), 7, 2018},
		{"august is month twelve", time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC), 12, 2018},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Current(tc.now)
			assert.Equal(t, tc.month, p.Month)
			assert.Equal(t, tc.year, p.Year)
		})
	}
}

func TestCurrentMonotonic(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	prev := Current(start)
	for d := 1; d < 900; d++ {
		p := Current(start.AddDate(0, 0, d))
		later := p.Year > prev.Year || (p.Year == prev.Year && p.Month >= prev.Month)
		require.True(t, later, "period went backwards at day %d: %+v -> %+v", d, prev, p)
		prev = p
	}
}

func TestNextWrapsYear(t *testing.T) {
	p := Period{Month: 12, Year: 2017}
	next := p.Next()
	assert.Equal(t, Period{Month: 1, Year: 2018}, next)

	assert.Equal(t, Period{Month: 6, Year: 2017}, Period{Month: 5, Year: 2017}.Next())
}

func TestDeadlineFor(t *testing.T) {
	// Month 1 of 2018 is September 2025.
	d := DeadlineFor(Period{Month: 1, Year: 2018})
	assert.Equal(t, time.Date(2025, time.September, 18, 23, 59, 59, 0, time.UTC), d)

	// Month 5 of 2018 crosses into Gregorian 2026.
	d = DeadlineFor(Period{Month: 5, Year: 2018})
	assert.Equal(t, time.Date(2026, time.January, 18, 23, 59, 59, 0, time.UTC), d)

	// Month 12 of 2018 is August 2026.
	d = DeadlineFor(Period{Month: 12, Year: 2018})
	assert.Equal(t, time.Date(2026, time.August, 18, 23, 59, 59, 0, time.UTC), d)
}

func TestDeadlineFallsInsideOwnPeriod(t *testing.T) {
	for m := 1; m <= 12; m++ {
		p := Period{Month: m, Year: 2017}
		require.True(t, Current(DeadlineFor(p)).Equal(p), "deadline for month %d left its period", m)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "Meskerem", Period{Month: 1, Year: 2018}.Name())
	assert.Equal(t, "Nehase", Period{Month: 12, Year: 2018}.Name())
}
