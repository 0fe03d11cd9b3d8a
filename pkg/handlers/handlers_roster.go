package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/duty-roster-api/pkg/database"
	"github.com/arnavshah/duty-roster-api/pkg/middleware"
	"github.com/arnavshah/duty-roster-api/pkg/models"
	"github.com/arnavshah/duty-roster-api/pkg/scheduler"
)

func sortedKeys(prefs models.StaffPreferences) []string {
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// attempts clamps the requested number of shuffled attempts
func (h *Handler) attempts(requested int) int {
	if requested <= 0 {
		return h.Config.Solver.DefaultAttempts
	}
	if requested > h.Config.Solver.MaxAttempts {
		return h.Config.Solver.MaxAttempts
	}
	return requested
}

// GenerateRoster runs the roster solver on the request
func (h *Handler) GenerateRoster(c *gin.Context) {
	req := h.newGenerateRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Metrics.ObserveRequest("generate", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dates, err := h.resolveDates(&req)
	if err == nil {
		err = scheduler.ValidateRules(req.Rules)
	}
	if err != nil {
		h.Metrics.ObserveRequest("generate", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	start := time.Now()
	resp := scheduler.Propose(&req, dates, seed, h.attempts(req.Attempts))
	elapsed := time.Since(start)

	outcome := "filled"
	if len(resp.Unassigned) > 0 {
		outcome = "partial"
	}
	h.Metrics.ObserveRequest("generate", outcome)
	h.Metrics.ObserveSolve(elapsed, len(resp.Unassigned), resp.Attempts)

	h.Logger.Info("roster generated",
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Int("dates", len(dates)),
		zap.Int("staff", len(req.Rules.Staff)),
		zap.Int("unassigned", len(resp.Unassigned)),
		zap.Int("attempts", resp.Attempts),
		zap.Int64("seed", seed),
		zap.Duration("elapsed", elapsed),
	)

	h.recordUsage(c, database.UsageDelta{
		Dates:      len(dates),
		Staff:      len(req.Rules.Staff),
		Unassigned: len(resp.Unassigned),
	})

	c.JSON(http.StatusOK, resp)
}

// ComputeCounts returns duty counts for a supplied roster
func (h *Handler) ComputeCounts(c *gin.Context) {
	var req models.CountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Metrics.ObserveRequest("counts", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counts := scheduler.ComputeCounts(req.Roster, req.Rules, req.Holidays)
	h.Metrics.ObserveRequest("counts", "ok")
	h.recordUsage(c, database.UsageDelta{Dates: len(req.Roster), Staff: len(req.Rules.Staff)})

	c.JSON(http.StatusOK, models.CountsResponse{
		Counts:        counts,
		FairnessScore: scheduler.FairnessScore(counts, req.Rules.Staff),
		Weekly:        scheduler.WeeklyDistribution(req.Roster, req.Rules.Staff),
	})
}

// AuditRoster reports rule violations in a supplied roster
func (h *Handler) AuditRoster(c *gin.Context) {
	var req models.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Metrics.ObserveRequest("audit", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	violations := scheduler.Audit(req.Roster, req.Preferences, req.Rules, req.History)
	outcome := "clean"
	if len(violations) > 0 {
		outcome = "violations"
	}
	h.Metrics.ObserveRequest("audit", outcome)
	h.recordUsage(c, database.UsageDelta{Dates: len(req.Roster), Staff: len(req.Rules.Staff)})

	c.JSON(http.StatusOK, models.AuditResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}
