package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/arnavshah/duty-roster-api/pkg/models"
)

// FairnessScore returns a percentage (0-100) representing how evenly
// duties are distributed over staff. 100% is perfectly fair (Standard
// Deviation = 0).
func FairnessScore(counts models.StaffDutyCounts, staff []string) float64 {
	if len(staff) == 0 {
		return 100.0
	}

	var sum float64
	for _, s := range staff {
		sum += float64(counts[s].Total)
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(staff))

	var varianceSum float64
	for _, s := range staff {
		diff := float64(counts[s].Total) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(staff)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

type weekKey struct {
	month string
	week  int
}

// WeeklyDistribution counts duties per staff member for each week of each
// month, where week N covers days 7(N-1)+1 to 7N. Buckets are ordered by
// month then week, and only weeks holding at least one duty are returned.
func WeeklyDistribution(roster models.Roster, staff []string) []models.WeekBucket {
	weeks := make(map[weekKey]map[string]int)
	for date, s := range roster {
		if s == "" {
			continue
		}
		t, err := ParseDate(date)
		if err != nil {
			continue
		}
		k := weekKey{month: t.Format(monthLayout), week: (t.Day() - 1) / 7}
		if weeks[k] == nil {
			weeks[k] = make(map[string]int)
		}
		weeks[k][s]++
	}

	keys := make([]weekKey, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].week < keys[j].week
	})

	buckets := make([]models.WeekBucket, 0, len(keys))
	for _, k := range keys {
		counts := make(map[string]int, len(staff))
		for _, s := range staff {
			counts[s] = weeks[k][s]
		}
		buckets = append(buckets, models.WeekBucket{
			Month:  k.month,
			Week:   fmt.Sprintf("Week %d", k.week+1),
			Counts: counts,
		})
	}
	return buckets
}

// MinDutyShortfall reports how many duties each staff member is below
// rules.MinDuties. It is informational; the solver never enforces it.
func MinDutyShortfall(counts models.StaffDutyCounts, rules models.RosterRules) map[string]int {
	shortfall := make(map[string]int)
	if rules.MinDuties <= 0 {
		return shortfall
	}
	for _, s := range rules.Staff {
		if gap := rules.MinDuties - counts[s].Total; gap > 0 {
			shortfall[s] = gap
		}
	}
	return shortfall
}
