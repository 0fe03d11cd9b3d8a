package scheduler

import (
	"fmt"
	"sort"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Options tune a solve
type Options struct {
	// History holds assignments outside the scheduled dates, such as the
	// end of the previous month. They count towards rest spacing and
	// load balancing but are not part of the returned roster.
	History models.Roster
}

// Scheduler assigns one staff member per day
type Scheduler struct {
	Preferences models.StaffPreferences
	Rules       models.RosterRules
	Holidays    []models.PublicHoliday
	Options     Options
	Unfilled    []models.UnfilledDay

	rng      Shuffler
	prefs    *preferenceIndex
	holidays holidaySet
}

// NewScheduler creates a new scheduler instance. A nil rng keeps the
// staff listing order for tie-breaking.
func NewScheduler(prefs models.StaffPreferences, rules models.RosterRules, holidays []models.PublicHoliday, rng Shuffler) *Scheduler {
	return &Scheduler{
		Preferences: prefs,
		Rules:       rules,
		Holidays:    holidays,
		rng:         rng,
		prefs:       newPreferenceIndex(prefs, rules.Staff),
		holidays:    newHolidaySet(holidays),
	}
}

// Generate builds a roster for dates without options
func Generate(dates []string, prefs models.StaffPreferences, rules models.RosterRules, holidays []models.PublicHoliday, rng Shuffler) models.Roster {
	return NewScheduler(prefs, rules, holidays, rng).Generate(dates)
}

// Generate fills dates in three passes: pre-assignments, requested dates
// (least contended first), then a balanced fill of whatever is left.
// Days nobody can take stay unassigned and are explained in s.Unfilled.
func (s *Scheduler) Generate(dates []string) models.Roster {
	s.Unfilled = nil
	dates = uniqueDates(dates)

	roster := make(models.Roster, len(dates)+len(s.Options.History))
	for date, staff := range s.Options.History {
		roster[date] = staff
	}
	for _, date := range dates {
		roster[date] = ""
	}
	scope := newDateSet(dates)

	s.preAssign(roster, scope)
	s.assignPreferred(roster, dates, scope)
	s.fillBalanced(roster, dates)

	out := make(models.Roster, len(scope))
	for date := range scope {
		out[date] = roster[date]
	}
	return out
}

// preAssign commits every in-scope pre-assignment without checking
// eligibility. When two staff claim the same date the first in
// preference order keeps it.
func (s *Scheduler) preAssign(roster models.Roster, scope dateSet) {
	for _, staff := range s.prefs.order {
		for _, date := range s.Preferences[staff].PreAssignedDates {
			if scope.has(date) && roster[date] == "" {
				roster[date] = staff
			}
		}
	}
}

// assignPreferred grants requested dates, scarcest first, to the first
// eligible requester in preference order
func (s *Scheduler) assignPreferred(roster models.Roster, dates []string, scope dateSet) {
	requesters := make(map[string][]string)
	for _, staff := range s.prefs.order {
		for _, date := range s.Preferences[staff].PreferredDates {
			if !scope.has(date) || roster[date] != "" {
				continue
			}
			list := requesters[date]
			if len(list) > 0 && list[len(list)-1] == staff {
				continue
			}
			requesters[date] = append(list, staff)
		}
	}

	var requested []string
	for _, date := range dates {
		if _, ok := requesters[date]; ok {
			requested = append(requested, date)
		}
	}
	sort.SliceStable(requested, func(i, j int) bool {
		return len(requesters[requested[i]]) < len(requesters[requested[j]])
	})

	for _, date := range requested {
		if roster[date] != "" {
			continue
		}
		for _, staff := range requesters[date] {
			if s.prefs.check(staff, date, roster, s.Rules.MinRestDays) == eligible {
				roster[date] = staff
				break
			}
		}
	}
}

// fillBalanced walks the remaining dates chronologically and gives each
// to the eligible staff member with the lowest live load score. Ties go
// to the earlier position in one shuffled staff order.
func (s *Scheduler) fillBalanced(roster models.Roster, dates []string) {
	order := append([]string(nil), s.Rules.Staff...)
	if s.rng != nil {
		s.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	for _, date := range dates {
		if roster[date] != "" {
			continue
		}

		var candidates []string
		tally := make(map[rejectReason]int)
		for _, staff := range order {
			if r := s.prefs.check(staff, date, roster, s.Rules.MinRestDays); r != eligible {
				tally[r]++
				continue
			}
			candidates = append(candidates, staff)
		}

		if len(candidates) == 0 {
			s.Unfilled = append(s.Unfilled, models.UnfilledDay{
				Date:    date,
				Reasons: unfilledReasons(tally, len(order)),
			})
			continue
		}

		// TODO: keep counts incrementally if rosters grow beyond a month
		counts := computeCounts(roster, s.Rules.Staff, s.holidays)
		weekend := s.holidays.weekendOrHoliday(date)

		best := candidates[0]
		bestScore := loadScore(counts[best], weekend)
		for _, cand := range candidates[1:] {
			if score := loadScore(counts[cand], weekend); score < bestScore {
				best = cand
				bestScore = score
			}
		}
		roster[date] = best
	}
}

func unfilledReasons(tally map[rejectReason]int, staffCount int) []string {
	if staffCount == 0 {
		return []string{"no staff in roster rules"}
	}
	var reasons []string
	if n := tally[rejectBlocked]; n > 0 {
		reasons = append(reasons, fmt.Sprintf("%d staff were blocked", n))
	}
	if n := tally[rejectPreAssigned]; n > 0 {
		reasons = append(reasons, fmt.Sprintf("%d staff were excluded by another pre-assignment", n))
	}
	if n := tally[rejectDeclined]; n > 0 {
		reasons = append(reasons, fmt.Sprintf("%d staff declined", n))
	}
	if n := tally[rejectRest]; n > 0 {
		reasons = append(reasons, fmt.Sprintf("%d staff were inside their rest window", n))
	}
	return reasons
}

// GenerateBest runs Generate up to attempts times and keeps the roster
// with the fewest unassigned days, preferring the fairer one on a tie.
// It stops at the first fully filled roster and returns the number of
// attempts made.
func (s *Scheduler) GenerateBest(dates []string, attempts int) (models.Roster, int) {
	if attempts < 1 {
		attempts = 1
	}

	var best models.Roster
	var bestUnfilled []models.UnfilledDay
	bestMissing := -1
	bestFairness := -1.0

	made := 0
	for made < attempts {
		made++
		roster := s.Generate(dates)
		missing := len(Unassigned(roster))
		fairness := FairnessScore(computeCounts(roster, s.Rules.Staff, s.holidays), s.Rules.Staff)

		if best == nil || missing < bestMissing || (missing == bestMissing && fairness > bestFairness) {
			best = roster
			bestUnfilled = s.Unfilled
			bestMissing = missing
			bestFairness = fairness
		}
		if bestMissing == 0 {
			break
		}
	}

	s.Unfilled = bestUnfilled
	return best, made
}

func uniqueDates(dates []string) []string {
	seen := make(dateSet, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if !seen.has(d) {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// Unassigned returns the unassigned dates of a roster in order
func Unassigned(roster models.Roster) []string {
	dates := make([]string, 0)
	for date, staff := range roster {
		if staff == "" {
			dates = append(dates, date)
		}
	}
	SortDates(dates)
	return dates
}
