package scheduler

import (
	"fmt"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

// ResolveDates returns the chronologically sorted dates a request covers.
// Explicit dates take precedence over the month. maxDates <= 0 disables the
// size limit.
func ResolveDates(req *models.GenerateRequest, maxDates int) ([]string, error) {
	var dates []string
	switch {
	case len(req.Dates) > 0:
		for _, d := range req.Dates {
			if _, err := ParseDate(d); err != nil {
				return nil, fmt.Errorf("%w: %q", models.ErrInvalidDate, d)
			}
		}
		dates = uniqueDates(req.Dates)
		SortDates(dates)
	case req.Month != "":
		year, month, err := ParseMonth(req.Month)
		if err != nil {
			return nil, err
		}
		dates = MonthDates(year, month)
	default:
		return nil, models.ErrNoDates
	}

	if maxDates > 0 && len(dates) > maxDates {
		return nil, fmt.Errorf("%w: %d > %d", models.ErrTooManyDates, len(dates), maxDates)
	}
	return dates, nil
}

// MaxRestDays bounds rules.MinRestDays. A wider window already keeps
// every staff member to one duty in a year of dates.
const MaxRestDays = 366

// ValidateRules rejects rules the solver would only answer with a
// degenerate roster
func ValidateRules(rules models.RosterRules) error {
	if len(rules.Staff) == 0 {
		return models.ErrNoStaff
	}
	seen := make(map[string]bool, len(rules.Staff))
	for _, s := range rules.Staff {
		if s == "" {
			return fmt.Errorf("%w: empty name", models.ErrNoStaff)
		}
		if seen[s] {
			return fmt.Errorf("%w: %s", models.ErrDuplicate, s)
		}
		seen[s] = true
	}
	if rules.MinRestDays < 0 {
		return models.ErrNegativeRest
	}
	if rules.MinRestDays > MaxRestDays {
		return fmt.Errorf("%w: %d > %d", models.ErrRestTooLong, rules.MinRestDays, MaxRestDays)
	}
	return nil
}
