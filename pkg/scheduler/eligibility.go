package scheduler

import (
	"sort"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

type rejectReason int

const (
	eligible rejectReason = iota
	rejectBlocked
	rejectPreAssigned
	rejectDeclined
	rejectRest
)

type dateSet map[string]struct{}

func newDateSet(dates []string) dateSet {
	set := make(dateSet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

func (s dateSet) has(date string) bool {
	_, ok := s[date]
	return ok
}

// preferenceIndex is a lookup view over StaffPreferences. order lists the
// preference holders deterministically: rules.Staff first, then anyone
// else in lexical order.
type preferenceIndex struct {
	prefs         models.StaffPreferences
	blocked       map[string]dateSet
	declined      map[string]dateSet
	preAssignedTo map[string][]string
	order         []string
}

func newPreferenceIndex(prefs models.StaffPreferences, staff []string) *preferenceIndex {
	idx := &preferenceIndex{
		prefs:         prefs,
		blocked:       make(map[string]dateSet, len(prefs)),
		declined:      make(map[string]dateSet, len(prefs)),
		preAssignedTo: make(map[string][]string),
	}

	seen := make(map[string]bool, len(prefs))
	for _, s := range staff {
		if _, ok := prefs[s]; ok && !seen[s] {
			seen[s] = true
			idx.order = append(idx.order, s)
		}
	}
	var rest []string
	for s := range prefs {
		if !seen[s] {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	idx.order = append(idx.order, rest...)

	for _, s := range idx.order {
		p := prefs[s]
		idx.blocked[s] = newDateSet(p.BlockedDates)
		idx.declined[s] = newDateSet(p.DeclinedDates)
		for _, d := range p.PreAssignedDates {
			owners := idx.preAssignedTo[d]
			if len(owners) == 0 || owners[len(owners)-1] != s {
				idx.preAssignedTo[d] = append(owners, s)
			}
		}
	}
	return idx
}

// preAssignedElsewhere returns another staff member holding a
// pre-assignment on date, if any
func (idx *preferenceIndex) preAssignedElsewhere(staff, date string) (string, bool) {
	for _, owner := range idx.preAssignedTo[date] {
		if owner != staff {
			return owner, true
		}
	}
	return "", false
}

// IsEligible reports whether staff may take date given the roster as
// filled so far. It checks, in order: blocked dates, another staff
// member's pre-assignment, declined dates, and the rest window of
// rules.MinRestDays on both sides of date.
func IsEligible(staff, date string, roster models.Roster, prefs models.StaffPreferences, rules models.RosterRules) bool {
	idx := newPreferenceIndex(prefs, rules.Staff)
	return idx.check(staff, date, roster, rules.MinRestDays) == eligible
}

func (idx *preferenceIndex) check(staff, date string, roster models.Roster, minRestDays int) rejectReason {
	if idx.blocked[staff].has(date) {
		return rejectBlocked
	}
	if _, ok := idx.preAssignedElsewhere(staff, date); ok {
		return rejectPreAssigned
	}
	if idx.declined[staff].has(date) {
		return rejectDeclined
	}
	if restConflict(staff, date, roster, minRestDays) != "" {
		return rejectRest
	}
	return eligible
}

// restConflict returns the nearest date within minRestDays of date that
// is already assigned to staff, or "" when the window is clear. On a tie
// the earlier date wins. Windows wider than the roster scan its entries
// instead of the calendar.
func restConflict(staff, date string, roster models.Roster, minRestDays int) string {
	if minRestDays <= 0 || staff == "" {
		return ""
	}
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}

	if minRestDays > len(roster) {
		best, bestGap := "", 0
		for d, s := range roster {
			if s != staff || d == date {
				continue
			}
			u, err := ParseDate(d)
			if err != nil {
				continue
			}
			gap := daysBetween(t, u)
			if gap < 0 {
				gap = -gap
			}
			if gap < 1 || gap > minRestDays {
				continue
			}
			if best == "" || gap < bestGap || (gap == bestGap && d < best) {
				best, bestGap = d, gap
			}
		}
		return best
	}

	for i := 1; i <= minRestDays; i++ {
		if prev := FormatDate(t.AddDate(0, 0, -i)); roster[prev] == staff {
			return prev
		}
		if next := FormatDate(t.AddDate(0, 0, i)); roster[next] == staff {
			return next
		}
	}
	return ""
}
