package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-roster-api/pkg/database"
)

// usageWindow is how many daily usage rows a summary covers
const usageWindow = 30

type usageTotals struct {
	Requests   int64 `json:"requests"`
	Dates      int64 `json:"dates"`
	Staff      int64 `json:"staff"`
	Unassigned int64 `json:"unassigned"`
}

// usageSummary loads the most recent daily rows of a key and sums them
func (h *Handler) usageSummary(keyID interface{}) ([]database.APIUsage, usageTotals, error) {
	var rows []database.APIUsage
	err := h.DB.Where("key_id = ?", keyID).Order("date desc").Limit(usageWindow).Find(&rows).Error
	if err != nil {
		return nil, usageTotals{}, err
	}

	var totals usageTotals
	for _, u := range rows {
		totals.Requests += int64(u.RequestCount)
		totals.Dates += int64(u.TotalDates)
		totals.Staff += int64(u.TotalStaff)
		totals.Unassigned += int64(u.TotalUnassigned)
	}
	return rows, totals, nil
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	rows, totals, err := h.usageSummary(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": rows, "totals": totals})
}

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	raw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "usage tracking is not enabled"})
		return
	}
	apiKey := raw.(*database.APIKey)

	rows, totals, err := h.usageSummary(apiKey.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": rows,
		"totals":        totals,
	})
}
