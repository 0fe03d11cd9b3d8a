package models

import "errors"

var (
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
	ErrNoDates      = errors.New("either dates or month is required")
	ErrNoStaff      = errors.New("rules.staff must contain at least one staff member")
	ErrDuplicate    = errors.New("duplicate staff member")
	ErrNegativeRest = errors.New("rules.minRestDays must not be negative")
	ErrRestTooLong  = errors.New("rules.minRestDays is too large")
	ErrTooManyDates = errors.New("too many dates in one request")
)

// GenerateRequest is the body of the roster generation endpoint and the
// input file format of the command-line tool
type GenerateRequest struct {
	Month       string           `json:"month,omitempty" yaml:"month"`
	Dates       []string         `json:"dates,omitempty" yaml:"dates"`
	Preferences StaffPreferences `json:"preferences" yaml:"preferences"`
	Rules       RosterRules      `json:"rules" yaml:"rules"`
	Holidays    []PublicHoliday  `json:"holidays,omitempty" yaml:"holidays"`
	History     Roster           `json:"history,omitempty" yaml:"history"`
	Seed        *int64           `json:"seed,omitempty" yaml:"seed"`
	Attempts    int              `json:"attempts,omitempty" yaml:"attempts"`
}

// GenerateResponse is the result of a roster generation
type GenerateResponse struct {
	Roster           Roster          `json:"roster"`
	Unassigned       []string        `json:"unassigned"`
	Unfilled         []UnfilledDay   `json:"unfilled,omitempty"`
	Counts           StaffDutyCounts `json:"counts"`
	FairnessScore    float64         `json:"fairnessScore"`
	Weekly           []WeekBucket    `json:"weekly"`
	MinDutyShortfall map[string]int  `json:"minDutyShortfall,omitempty"`
	Seed             int64           `json:"seed"`
	Attempts         int             `json:"attempts"`
}

// CountsRequest asks for duty counts over an existing roster
type CountsRequest struct {
	Roster   Roster          `json:"roster"`
	Rules    RosterRules     `json:"rules"`
	Holidays []PublicHoliday `json:"holidays,omitempty"`
}

// CountsResponse is the result of a counts request
type CountsResponse struct {
	Counts        StaffDutyCounts `json:"counts"`
	FairnessScore float64         `json:"fairnessScore"`
	Weekly        []WeekBucket    `json:"weekly"`
}

// AuditRequest asks for rule violations in an existing roster
type AuditRequest struct {
	Roster      Roster           `json:"roster"`
	Preferences StaffPreferences `json:"preferences"`
	Rules       RosterRules      `json:"rules"`
	History     Roster           `json:"history,omitempty"`
}

// AuditResponse lists the violations found
type AuditResponse struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}
