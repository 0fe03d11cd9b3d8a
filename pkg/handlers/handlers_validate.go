package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-roster-api/pkg/models"
	"github.com/arnavshah/duty-roster-api/pkg/scheduler"
)

// newGenerateRequest returns a request pre-filled with the configured rule
// defaults. Binding JSON on top keeps them for any field the body omits.
func (h *Handler) newGenerateRequest() models.GenerateRequest {
	return models.GenerateRequest{
		Rules: models.RosterRules{
			MinDuties:   h.Config.Solver.DefaultMinDuties,
			MinRestDays: h.Config.Solver.DefaultMinRestDays,
		},
	}
}

// resolveDates applies the configured date limit
func (h *Handler) resolveDates(req *models.GenerateRequest) ([]string, error) {
	return scheduler.ResolveDates(req, h.Config.Solver.MaxDates)
}

// preferenceWarnings lists suspicious but solvable input
func preferenceWarnings(req *models.GenerateRequest) []string {
	onStaff := make(map[string]bool, len(req.Rules.Staff))
	for _, s := range req.Rules.Staff {
		onStaff[s] = true
	}

	warnings := make([]string, 0)
	for _, staff := range sortedKeys(req.Preferences) {
		if !onStaff[staff] {
			warnings = append(warnings, fmt.Sprintf("%s has preferences but is not in rules.staff", staff))
		}

		p := req.Preferences[staff]
		sets := []struct {
			name  string
			dates []string
		}{
			{"preAssignedDates", p.PreAssignedDates},
			{"blockedDates", p.BlockedDates},
			{"declinedDates", p.DeclinedDates},
			{"preferredDates", p.PreferredDates},
		}

		first := make(map[string]string)
		for _, set := range sets {
			for _, d := range set.dates {
				if _, err := scheduler.ParseDate(d); err != nil {
					warnings = append(warnings, fmt.Sprintf("%s has malformed date %q in %s", staff, d, set.name))
					continue
				}
				if prev, ok := first[d]; ok && prev != set.name {
					warnings = append(warnings, fmt.Sprintf("%s has %s in both %s and %s", staff, d, prev, set.name))
					continue
				}
				first[d] = set.name
			}
		}
	}

	for _, hol := range req.Holidays {
		if _, err := scheduler.ParseDate(hol.Date); err != nil {
			warnings = append(warnings, fmt.Sprintf("holiday %q has malformed date %q", hol.Holiday, hol.Date))
		}
	}
	return warnings
}

// ValidateInput checks a generation request without solving it
func (h *Handler) ValidateInput(c *gin.Context) {
	req := h.newGenerateRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}

	dates, err := h.resolveDates(&req)
	if err == nil {
		err = scheduler.ValidateRules(req.Rules)
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"warnings": preferenceWarnings(&req),
		"stats": gin.H{
			"date_count":  len(dates),
			"staff_count": len(req.Rules.Staff),
		},
	})
}
