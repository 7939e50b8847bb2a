// Package period maps wall-clock time onto the organization's Ethiopian
// fiscal calendar. Fiscal month 1 (Meskerem) corresponds to Gregorian
// September; the fiscal year lags the Gregorian year by 7 from September
// through December and by 8 from January through August. The 13th month
// (Pagume) is folded into month 12 and is not modeled here.
package period

import "time"

// Period identifies one reporting period of the fiscal calendar.
type Period struct {
	Month int // 1..12
	Year  int // Ethiopian fiscal year
}

// DeadlineDay is the day of the mapped Gregorian month on which reports for
// a period are due.
const DeadlineDay = 18

// Current resolves now into the fiscal period it belongs to. It is total and
// monotonic: every instant maps to exactly one period, and later instants
// never map to earlier periods.
func Current(now time.Time) Period {
	now = now.UTC()
	gm := int(now.Month())
	gy := now.Year()
	if gm >= 9 {
		return Period{Month: gm - 8, Year: gy - 7}
	}
	return Period{Month: gm + 4, Year: gy - 8}
}

// Next returns the period following p, wrapping month 12 into month 1 of the
// next fiscal year.
func (p Period) Next() Period {
	if p.Month >= 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// GregorianMonth returns the Gregorian (month, year) that period p maps to.
func (p Period) GregorianMonth() (time.Month, int) {
	var gm int
	if p.Month <= 4 {
		gm = p.Month + 8
	} else {
		gm = p.Month - 4
	}
	gy := p.Year + 8
	if gm >= 9 {
		gy = p.Year + 7
	}
	return time.Month(gm), gy
}

// DeadlineFor returns the submission deadline for p: end of the 18th of the
// mapped Gregorian month, UTC.
func DeadlineFor(p Period) time.Time {
	gm, gy := p.GregorianMonth()
	return time.Date(gy, gm, DeadlineDay, 23, 59, 59, 0, time.UTC)
}

// Equal reports whether two periods identify the same month.
func (p Period) Equal(o Period) bool {
	return p.Month == o.Month && p.Year == o.Year
}

// Name returns the Amharic month name for display and export headers.
func (p Period) Name() string {
	if p.Month < 1 || p.Month > 12 {
		return "unknown"
	}
	return monthNames[p.Month-1]
}

var monthNames = [12]string{
	"Meskerem", "Tikimt", "Hidar", "Tahsas", "Tir", "Yekatit",
	"Megabit", "Miyazya", "Ginbot", "Sene", "Hamle", "Nehase",
}
