package scheduler

import "github.com/arnavshah/duty-roster-api/pkg/models"

// ComputeCounts tallies total, weekday and weekend duties for every staff
// member in rules.Staff. Assignments to staff outside rules.Staff are
// ignored, and holidays count as weekend days.
func ComputeCounts(roster models.Roster, rules models.RosterRules, holidays []models.PublicHoliday) models.StaffDutyCounts {
	return computeCounts(roster, rules.Staff, newHolidaySet(holidays))
}

func computeCounts(roster models.Roster, staff []string, holidays holidaySet) models.StaffDutyCounts {
	counts := make(models.StaffDutyCounts, len(staff))
	for _, s := range staff {
		counts[s] = models.DutyCounts{}
	}

	for date, s := range roster {
		c, ok := counts[s]
		if s == "" || !ok {
			continue
		}
		c.Total++
		if holidays.weekendOrHoliday(date) {
			c.Weekend++
		} else {
			c.Weekday++
		}
		counts[s] = c
	}
	return counts
}

// loadScore is the balancing key of the fill pass. Weekend and holiday
// duties are weighted double so they spread evenly.
func loadScore(c models.DutyCounts, weekendOrHoliday bool) int {
	if weekendOrHoliday {
		return c.Weekend*2 + c.Total
	}
	return c.Total
}
