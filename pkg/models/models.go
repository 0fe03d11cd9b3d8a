package models

import "encoding/json"

// DutyPreferences holds the dates a staff member asked for, declined,
// was pre-assigned to, or cannot work
type DutyPreferences struct {
	PreferredDates   []string `json:"preferredDates" yaml:"preferredDates"`
	DeclinedDates    []string `json:"declinedDates" yaml:"declinedDates"`
	PreAssignedDates []string `json:"preAssignedDates" yaml:"preAssignedDates"`
	BlockedDates     []string `json:"blockedDates" yaml:"blockedDates"`
}

// StaffPreferences maps a staff member to their preferences
type StaffPreferences map[string]DutyPreferences

// RosterRules are the configurable rules for a roster period.
// MinDuties is informational and never enforced by the solver.
type RosterRules struct {
	MinDuties   int      `json:"minDuties" yaml:"minDuties"`
	MinRestDays int      `json:"minRestDays" yaml:"minRestDays"`
	Staff       []string `json:"staff" yaml:"staff"`
}

// PublicHoliday is a dated holiday, balanced like a weekend day
type PublicHoliday struct {
	Date       string `json:"date" yaml:"date"`
	Day        string `json:"day,omitempty" yaml:"day"`
	Holiday    string `json:"holiday,omitempty" yaml:"holiday"`
	Observance string `json:"observance,omitempty" yaml:"observance"`
}

// Roster maps a YYYY-MM-DD date to the assigned staff member.
// The empty string means the day is unassigned; it encodes as JSON null.
type Roster map[string]string

// MarshalJSON writes unassigned days as null
func (r Roster) MarshalJSON() ([]byte, error) {
	out := make(map[string]*string, len(r))
	for date, staff := range r {
		if staff == "" {
			out[date] = nil
			continue
		}
		s := staff
		out[date] = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null for unassigned days
func (r *Roster) UnmarshalJSON(data []byte) error {
	var in map[string]*string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = make(Roster, len(in))
	for date, staff := range in {
		if staff == nil {
			(*r)[date] = ""
			continue
		}
		(*r)[date] = *staff
	}
	return nil
}

// Clone returns an independent copy of the roster
func (r Roster) Clone() Roster {
	out := make(Roster, len(r))
	for date, staff := range r {
		out[date] = staff
	}
	return out
}

// DutyCounts is the derived workload of one staff member
type DutyCounts struct {
	Total   int `json:"total"`
	Weekday int `json:"weekday"`
	Weekend int `json:"weekend"`
}

// StaffDutyCounts maps a staff member to their duty counts
type StaffDutyCounts map[string]DutyCounts

// UnfilledDay explains why a date was left unassigned
type UnfilledDay struct {
	Date    string   `json:"date"`
	Reasons []string `json:"reasons"`
}

// Violation kinds reported by a roster audit
const (
	ViolationRestSpacing = "rest_spacing"
	ViolationBlocked     = "blocked"
	ViolationDeclined    = "declined"
	ViolationPreAssigned = "pre_assigned_elsewhere"
)

// Violation is a rule broken by an assignment in a roster
type Violation struct {
	Date    string `json:"date"`
	Staff   string `json:"staff"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
	Related string `json:"related,omitempty"`
}

// WeekBucket holds per-staff duty counts for one week of a month
type WeekBucket struct {
	Month  string         `json:"month"`
	Week   string         `json:"week"`
	Counts map[string]int `json:"counts"`
}
