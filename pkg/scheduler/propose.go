package scheduler

import (
	"math/rand"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

// Propose generates a roster for dates from a request and gathers the
// statistics returned to callers. The same seed and attempts always give
// the same proposal.
func Propose(req *models.GenerateRequest, dates []string, seed int64, attempts int) *models.GenerateResponse {
	s := NewScheduler(req.Preferences, req.Rules, req.Holidays, rand.New(rand.NewSource(seed)))
	s.Options.History = req.History

	roster, made := s.GenerateBest(dates, attempts)
	counts := computeCounts(roster, req.Rules.Staff, s.holidays)

	return &models.GenerateResponse{
		Roster:           roster,
		Unassigned:       Unassigned(roster),
		Unfilled:         s.Unfilled,
		Counts:           counts,
		FairnessScore:    FairnessScore(counts, req.Rules.Staff),
		Weekly:           WeeklyDistribution(roster, req.Rules.Staff),
		MinDutyShortfall: MinDutyShortfall(counts, req.Rules),
		Seed:             seed,
		Attempts:         made,
	}
}
