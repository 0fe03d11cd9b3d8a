package scheduler

import (
	"errors"
	"reflect"
	"testing"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

func TestResolveDates(t *testing.T) {
	dates, err := ResolveDates(&models.GenerateRequest{
		Dates: []string{"2024-03-05", "2024-03-01", "2024-03-05"},
		Month: "2024-04",
	}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"2024-03-01", "2024-03-05"}; !reflect.DeepEqual(dates, want) {
		t.Errorf("explicit dates = %v, want %v", dates, want)
	}

	dates, err = ResolveDates(&models.GenerateRequest{Month: "2024-02"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 29 || dates[0] != "2024-02-01" || dates[28] != "2024-02-29" {
		t.Errorf("leap February resolved to %d dates (%v..%v)", len(dates), dates[0], dates[len(dates)-1])
	}

	cases := []struct {
		name string
		req  models.GenerateRequest
		max  int
		want error
	}{
		{"nothing", models.GenerateRequest{}, 0, models.ErrNoDates},
		{"bad month", models.GenerateRequest{Month: "2024-13"}, 0, models.ErrInvalidMonth},
		{"bad date", models.GenerateRequest{Dates: []string{"2024-02-30"}}, 0, models.ErrInvalidDate},
		{"too many", models.GenerateRequest{Month: "2024-01"}, 30, models.ErrTooManyDates},
	}
	for _, tc := range cases {
		if _, err := ResolveDates(&tc.req, tc.max); !errors.Is(err, tc.want) {
			t.Errorf("%s: error = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestValidateRules(t *testing.T) {
	cases := []struct {
		rules models.RosterRules
		want  error
	}{
		{models.RosterRules{Staff: []string{"A", "B"}, MinRestDays: 3}, nil},
		{models.RosterRules{}, models.ErrNoStaff},
		{models.RosterRules{Staff: []string{"A", ""}}, models.ErrNoStaff},
		{models.RosterRules{Staff: []string{"A", "B", "A"}}, models.ErrDuplicate},
		{models.RosterRules{Staff: []string{"A"}, MinRestDays: -2}, models.ErrNegativeRest},
		{models.RosterRules{Staff: []string{"A"}, MinRestDays: MaxRestDays}, nil},
		{models.RosterRules{Staff: []string{"A"}, MinRestDays: MaxRestDays + 1}, models.ErrRestTooLong},
		{models.RosterRules{Staff: []string{"A"}, MinRestDays: 2000000000}, models.ErrRestTooLong},
	}
	for i, tc := range cases {
		err := ValidateRules(tc.rules)
		if tc.want == nil && err != nil {
			t.Errorf("case %d: unexpected error %v", i, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("case %d: error = %v, want %v", i, err, tc.want)
		}
	}
}
