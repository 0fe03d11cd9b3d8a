package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

// Audit lists the rules broken by a roster, typically one edited by hand
// after generation. Rest spacing is reported once per pair of duties, on
// the earlier date. history holds duties outside the roster, such as the
// end of the previous month; they only count towards rest spacing, and a
// pair is reported on its roster date.
func Audit(roster models.Roster, prefs models.StaffPreferences, rules models.RosterRules, history models.Roster) []models.Violation {
	idx := newPreferenceIndex(prefs, rules.Staff)
	violations := make([]models.Violation, 0)

	for date, staff := range roster {
		if staff == "" {
			continue
		}
		if idx.blocked[staff].has(date) {
			violations = append(violations, models.Violation{
				Date:   date,
				Staff:  staff,
				Kind:   models.ViolationBlocked,
				Detail: fmt.Sprintf("%s is blocked on %s", staff, date),
			})
		}
		if idx.declined[staff].has(date) {
			violations = append(violations, models.Violation{
				Date:   date,
				Staff:  staff,
				Kind:   models.ViolationDeclined,
				Detail: fmt.Sprintf("%s declined %s", staff, date),
			})
		}
		if owner, ok := idx.preAssignedElsewhere(staff, date); ok {
			violations = append(violations, models.Violation{
				Date:    date,
				Staff:   staff,
				Kind:    models.ViolationPreAssigned,
				Detail:  fmt.Sprintf("%s is pre-assigned to %s", date, owner),
				Related: owner,
			})
		}
	}

	violations = append(violations, restViolations(roster, history, rules.MinRestDays)...)

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Related < b.Related
	})
	return violations
}

type duty struct {
	date     string
	day      time.Time
	inRoster bool
}

// restViolations pairs up the duties of each staff member that sit closer
// than minRestDays. Pairs made only of history are ignored.
func restViolations(roster, history models.Roster, minRestDays int) []models.Violation {
	if minRestDays <= 0 {
		return nil
	}

	byStaff := make(map[string][]duty)
	add := func(date, staff string, inRoster bool) {
		if staff == "" {
			return
		}
		t, err := ParseDate(date)
		if err != nil {
			return
		}
		byStaff[staff] = append(byStaff[staff], duty{date: date, day: t, inRoster: inRoster})
	}
	for date, staff := range roster {
		add(date, staff, true)
	}
	for date, staff := range history {
		if _, ok := roster[date]; !ok {
			add(date, staff, false)
		}
	}

	var violations []models.Violation
	for staff, duties := range byStaff {
		sort.Slice(duties, func(i, j int) bool { return duties[i].date < duties[j].date })
		for i, a := range duties {
			for _, b := range duties[i+1:] {
				gap := daysBetween(a.day, b.day)
				if gap > minRestDays {
					break
				}
				if gap < 1 || (!a.inRoster && !b.inRoster) {
					continue
				}
				at, related := a, b
				if !a.inRoster {
					at, related = b, a
				}
				violations = append(violations, models.Violation{
					Date:    at.date,
					Staff:   staff,
					Kind:    models.ViolationRestSpacing,
					Detail:  fmt.Sprintf("%s works %s and %s, %d day(s) apart (minimum rest %d)", staff, a.date, b.date, gap, minRestDays),
					Related: related.date,
				})
			}
		}
	}
	return violations
}
