package scheduler

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

func march(days ...int) []string {
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, fmt.Sprintf("2024-03-%02d", d))
	}
	return dates
}

func marchRange(from, to int) []string {
	var days []int
	for d := from; d <= to; d++ {
		days = append(days, d)
	}
	return march(days...)
}

// reverseShuffler reverses the staff order instead of shuffling it
type reverseShuffler struct{}

func (reverseShuffler) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func TestGenerate_RestWindow(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 3, Staff: []string{"A", "B"}}
	s := NewScheduler(nil, rules, nil, nil)

	roster := s.Generate(marchRange(1, 7))

	expected := models.Roster{
		"2024-03-01": "A",
		"2024-03-02": "B",
		"2024-03-03": "",
		"2024-03-04": "",
		"2024-03-05": "A",
		"2024-03-06": "B",
		"2024-03-07": "",
	}
	if !reflect.DeepEqual(roster, expected) {
		t.Errorf("Expected %v, got %v", expected, roster)
	}

	if len(s.Unfilled) != 3 {
		t.Fatalf("Expected 3 unfilled days, got %d", len(s.Unfilled))
	}
	if s.Unfilled[0].Date != "2024-03-03" || s.Unfilled[0].Reasons[0] != "2 staff were inside their rest window" {
		t.Errorf("Unexpected unfilled entry %+v", s.Unfilled[0])
	}
}

func TestGenerate_SpacingInvariantAcrossShuffles(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 3, Staff: []string{"A", "B"}}
	dates := marchRange(1, 7)

	for seed := int64(1); seed <= 30; seed++ {
		roster := Generate(dates, nil, rules, nil, rand.New(rand.NewSource(seed)))
		if violations := Audit(roster, nil, rules, nil); len(violations) != 0 {
			t.Errorf("seed %d: unexpected violations %v", seed, violations)
		}
		if len(roster) != len(dates) {
			t.Errorf("seed %d: expected %d dates in roster, got %d", seed, len(dates), len(roster))
		}
	}
}

func TestGenerate_FullMonthInvariants(t *testing.T) {
	staff := []string{"CH", "JD", "LWH", "OM", "YKH", "NR"}
	rules := models.RosterRules{MinDuties: 4, MinRestDays: 3, Staff: staff}
	prefs := models.StaffPreferences{
		"CH":  {PreferredDates: march(2, 9, 16), BlockedDates: march(10, 11, 12)},
		"JD":  {DeclinedDates: march(1, 2, 3), PreferredDates: march(9)},
		"OM":  {BlockedDates: marchRange(20, 31)},
		"YKH": {PreAssignedDates: march(15)},
	}
	holidays := []models.PublicHoliday{{Date: "2024-03-29", Holiday: "Good Friday"}}
	dates := MonthDates(2024, 3)

	for seed := int64(1); seed <= 50; seed++ {
		roster := Generate(dates, prefs, rules, holidays, rand.New(rand.NewSource(seed)))

		if violations := Audit(roster, prefs, rules, nil); len(violations) != 0 {
			t.Errorf("seed %d: unexpected violations %v", seed, violations)
		}
		if roster["2024-03-15"] != "YKH" {
			t.Errorf("seed %d: expected pre-assignment to YKH, got %q", seed, roster["2024-03-15"])
		}
		if roster["2024-03-02"] != "CH" {
			t.Errorf("seed %d: expected sole requester CH on 03-02, got %q", seed, roster["2024-03-02"])
		}
	}
}

func TestGenerate_PreAssignmentOverridesBlocked(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 3, Staff: []string{"A", "B"}}
	prefs := models.StaffPreferences{
		"A": {PreAssignedDates: march(5), BlockedDates: march(5)},
	}

	roster := Generate(marchRange(1, 7), prefs, rules, nil, nil)

	if roster["2024-03-05"] != "A" {
		t.Errorf("Expected 2024-03-05 to be pre-assigned to A, got %q", roster["2024-03-05"])
	}
}

func TestGenerate_PreAssignmentConflict(t *testing.T) {
	prefs := models.StaffPreferences{
		"A": {PreAssignedDates: march(5)},
		"B": {PreAssignedDates: march(5)},
	}

	roster := Generate(march(5), prefs, models.RosterRules{Staff: []string{"A", "B"}}, nil, nil)
	if roster["2024-03-05"] != "A" {
		t.Errorf("Expected first listed staff A to keep the date, got %q", roster["2024-03-05"])
	}

	roster = Generate(march(5), prefs, models.RosterRules{Staff: []string{"B", "A"}}, nil, nil)
	if roster["2024-03-05"] != "B" {
		t.Errorf("Expected first listed staff B to keep the date, got %q", roster["2024-03-05"])
	}
}

func TestGenerate_IgnoresOutOfScopePreferences(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 1, Staff: []string{"A"}}
	prefs := models.StaffPreferences{
		"A": {PreAssignedDates: []string{"2024-04-01"}, PreferredDates: []string{"2024-04-02"}},
	}

	roster := Generate(march(30, 31), prefs, rules, nil, nil)

	if len(roster) != 2 {
		t.Errorf("Expected only in-scope dates, got %v", roster)
	}
	if _, ok := roster["2024-04-01"]; ok {
		t.Errorf("Out of scope pre-assignment leaked into the roster")
	}
}

func TestGenerate_FirstRequesterWins(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 3, Staff: []string{"A", "B"}}
	prefs := models.StaffPreferences{
		"A": {PreferredDates: march(10)},
		"B": {PreferredDates: march(10)},
	}

	roster := Generate(MonthDates(2024, 3), prefs, rules, nil, rand.New(rand.NewSource(42)))

	if roster["2024-03-10"] != "A" {
		t.Errorf("Expected A on 2024-03-10, got %q", roster["2024-03-10"])
	}
}

func TestGenerate_ScarcestRequestFirst(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 1, Staff: []string{"A", "B"}}
	prefs := models.StaffPreferences{
		"A": {PreferredDates: march(10, 11)},
		"B": {PreferredDates: march(10)},
	}

	roster := Generate(march(10, 11), prefs, rules, nil, nil)

	if roster["2024-03-11"] != "A" {
		t.Errorf("Expected the uncontested 03-11 to go to A, got %q", roster["2024-03-11"])
	}
	if roster["2024-03-10"] != "B" {
		t.Errorf("Expected 03-10 to fall to B, got %q", roster["2024-03-10"])
	}
}

func TestGenerate_Declined(t *testing.T) {
	rules := models.RosterRules{Staff: []string{"A", "B"}}
	prefs := models.StaffPreferences{"A": {DeclinedDates: march(1)}}

	roster := Generate(march(1), prefs, rules, nil, nil)

	if roster["2024-03-01"] != "B" {
		t.Errorf("Expected B, got %q", roster["2024-03-01"])
	}
}

func TestGenerate_WeekendWeighting(t *testing.T) {
	rules := models.RosterRules{Staff: []string{"A", "B"}}
	prefs := models.StaffPreferences{
		"A": {PreferredDates: march(2)},    // Saturday
		"B": {PreferredDates: march(4, 5)}, // Monday, Tuesday
	}

	roster := Generate(march(2, 4, 5, 9), prefs, rules, nil, nil)
	if roster["2024-03-09"] != "B" {
		t.Errorf("Expected Saturday 03-09 to go to B (score 2 vs 3), got %q", roster["2024-03-09"])
	}

	roster = Generate(march(2, 4, 5, 6), prefs, rules, nil, nil)
	if roster["2024-03-06"] != "A" {
		t.Errorf("Expected Wednesday 03-06 to go to A (total 1 vs 2), got %q", roster["2024-03-06"])
	}
}

func TestGenerate_HolidayBalancedAsWeekend(t *testing.T) {
	rules := models.RosterRules{Staff: []string{"A", "B"}}
	prefs := models.StaffPreferences{
		"A": {PreferredDates: march(24)},     // Sunday
		"B": {PreferredDates: march(26, 27)}, // Tuesday, Wednesday
	}
	dates := march(24, 26, 27, 29) // 29 is a Friday

	roster := Generate(dates, prefs, rules, []models.PublicHoliday{{Date: "2024-03-29"}}, nil)
	if roster["2024-03-29"] != "B" {
		t.Errorf("Expected holiday to be balanced on weekend load and go to B, got %q", roster["2024-03-29"])
	}

	roster = Generate(dates, prefs, rules, nil, nil)
	if roster["2024-03-29"] != "A" {
		t.Errorf("Expected plain Friday to go to A, got %q", roster["2024-03-29"])
	}
}

func TestGenerate_History(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 1, Staff: []string{"A", "B"}}
	s := NewScheduler(nil, rules, nil, nil)
	s.Options.History = models.Roster{"2024-02-29": "A"}

	roster := s.Generate(marchRange(1, 3))

	expected := models.Roster{"2024-03-01": "B", "2024-03-02": "A", "2024-03-03": "B"}
	if !reflect.DeepEqual(roster, expected) {
		t.Errorf("Expected %v, got %v", expected, roster)
	}
}

func TestGenerate_AllBlocked(t *testing.T) {
	dates := marchRange(1, 3)
	rules := models.RosterRules{MinRestDays: 1, Staff: []string{"A", "B"}}
	prefs := models.StaffPreferences{
		"A": {BlockedDates: dates},
		"B": {BlockedDates: dates},
	}
	s := NewScheduler(prefs, rules, nil, rand.New(rand.NewSource(1)))

	roster := s.Generate(dates)

	if got := Unassigned(roster); !reflect.DeepEqual(got, dates) {
		t.Errorf("Expected every date unassigned, got %v", got)
	}
	if len(s.Unfilled) != 3 || s.Unfilled[0].Reasons[0] != "2 staff were blocked" {
		t.Errorf("Unexpected unfilled report %+v", s.Unfilled)
	}
}

func TestGenerate_DegenerateRules(t *testing.T) {
	s := NewScheduler(nil, models.RosterRules{MinRestDays: 2}, nil, nil)
	roster := s.Generate(marchRange(1, 3))
	if len(Unassigned(roster)) != 3 {
		t.Errorf("Expected all dates unassigned without staff, got %v", roster)
	}
	if len(s.Unfilled) != 3 || s.Unfilled[0].Reasons[0] != "no staff in roster rules" {
		t.Errorf("Unexpected unfilled report %+v", s.Unfilled)
	}

	roster = Generate(marchRange(1, 3), nil, models.RosterRules{MinRestDays: -1, Staff: []string{"A"}}, nil, nil)
	for date, staff := range roster {
		if staff != "A" {
			t.Errorf("Expected A on %s with no rest constraint, got %q", date, staff)
		}
	}
}

func TestGenerate_ShuffleBreaksTies(t *testing.T) {
	rules := models.RosterRules{Staff: []string{"A", "B", "C"}}

	roster := Generate(march(1), nil, rules, nil, reverseShuffler{})

	if roster["2024-03-01"] != "C" {
		t.Errorf("Expected the first shuffled staff C, got %q", roster["2024-03-01"])
	}
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 2, Staff: []string{"A", "B", "C", "D"}}
	dates := MonthDates(2024, 3)

	first := Generate(dates, nil, rules, nil, rand.New(rand.NewSource(99)))
	second := Generate(dates, nil, rules, nil, rand.New(rand.NewSource(99)))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical rosters for the same seed")
	}
}

func TestGenerate_MonotonicFill(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 2, Staff: []string{"A", "B", "C"}}
	prefs := models.StaffPreferences{
		"A": {PreAssignedDates: march(3), PreferredDates: march(10, 20)},
		"B": {PreferredDates: march(10, 11), BlockedDates: march(1, 2)},
		"C": {PreAssignedDates: march(25), DeclinedDates: march(26)},
	}
	dates := MonthDates(2024, 3)
	s := NewScheduler(prefs, rules, nil, rand.New(rand.NewSource(5)))

	roster := make(models.Roster)
	for _, d := range dates {
		roster[d] = ""
	}
	scope := newDateSet(dates)

	s.preAssign(roster, scope)
	afterPass1 := roster.Clone()
	s.assignPreferred(roster, dates, scope)
	afterPass2 := roster.Clone()
	s.fillBalanced(roster, dates)

	for _, snapshot := range []models.Roster{afterPass1, afterPass2} {
		for date, staff := range snapshot {
			if staff != "" && roster[date] != staff {
				t.Errorf("Assignment on %s changed from %q to %q", date, staff, roster[date])
			}
		}
	}
	if afterPass1["2024-03-03"] != "A" || afterPass1["2024-03-25"] != "C" {
		t.Errorf("Expected pre-assignments after the first pass, got %v", afterPass1)
	}
}

func TestGenerateBest(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 3, Staff: []string{"A", "B", "C"}}
	prefs := models.StaffPreferences{"A": {BlockedDates: marchRange(10, 20)}}
	dates := MonthDates(2024, 3)

	single := Generate(dates, prefs, rules, nil, rand.New(rand.NewSource(11)))

	s := NewScheduler(prefs, rules, nil, rand.New(rand.NewSource(11)))
	best, made := s.GenerateBest(dates, 25)

	if made < 1 || made > 25 {
		t.Errorf("Expected between 1 and 25 attempts, got %d", made)
	}
	if len(Unassigned(best)) > len(Unassigned(single)) {
		t.Errorf("Best of %d left %d days open, single attempt left %d", made, len(Unassigned(best)), len(Unassigned(single)))
	}
	if len(s.Unfilled) != len(Unassigned(best)) {
		t.Errorf("Expected unfilled report to match best roster, got %d vs %d", len(s.Unfilled), len(Unassigned(best)))
	}
}

func TestGenerateBest_StopsWhenFilled(t *testing.T) {
	rules := models.RosterRules{MinRestDays: 1, Staff: []string{"A", "B", "C", "D"}}
	s := NewScheduler(nil, rules, nil, rand.New(rand.NewSource(3)))

	roster, made := s.GenerateBest(MonthDates(2024, 3), 10)

	if made != 1 {
		t.Errorf("Expected a single attempt for a fillable month, got %d", made)
	}
	if n := len(Unassigned(roster)); n != 0 {
		t.Errorf("Expected a full roster, got %d open days", n)
	}

	_, made = s.GenerateBest(march(1), 0)
	if made != 1 {
		t.Errorf("Expected attempts below 1 to run once, got %d", made)
	}
}
