package scheduler

import (
	"sort"
	"time"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// ParseDate parses a YYYY-MM-DD string as a UTC day
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, time.UTC)
}

// FormatDate renders the UTC day of t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// AddDays shifts a date by n days. Malformed input yields "".
func AddDays(date string, n int) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return FormatDate(t.AddDate(0, 0, n))
}

// daysBetween returns the whole days from a to b, negative when b is earlier
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// IsWeekend reports whether the date falls on a Saturday or Sunday
func IsWeekend(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether the date matches a holiday exactly
func IsHoliday(date string, holidays []models.PublicHoliday) bool {
	for _, h := range holidays {
		if h.Date == date {
			return true
		}
	}
	return false
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(month string) (int, time.Month, error) {
	t, err := time.ParseInLocation(monthLayout, month, time.UTC)
	if err != nil {
		return 0, 0, models.ErrInvalidMonth
	}
	return t.Year(), t.Month(), nil
}

// MonthDates returns every day of the month in order
func MonthDates(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var dates []string
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates
}

// SortDates sorts ISO dates chronologically in place
func SortDates(dates []string) {
	sort.Strings(dates)
}

// holidaySet indexes holiday dates for the weekend/holiday test
type holidaySet map[string]struct{}

func newHolidaySet(holidays []models.PublicHoliday) holidaySet {
	set := make(holidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date] = struct{}{}
	}
	return set
}

func (h holidaySet) weekendOrHoliday(date string) bool {
	if IsWeekend(date) {
		return true
	}
	_, ok := h[date]
	return ok
}
