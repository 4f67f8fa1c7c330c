package trips

import (
	"strings"

	"github.com/theirongolddev/tripbudget/internal/model"
)

// Aggregate computes dashboard statistics from a slice of plans.
func Aggregate(plans []model.TripPlan) model.DashboardStats {
	var stats model.DashboardStats
	destinations := make(map[string]struct{})

	for _, p := range plans {
		stats.TotalTrips++
		stats.TotalEstimated += p.TotalEstimated

		if p.IsSufficient {
			stats.Sufficient++
			stats.BudgetSaved += p.Remaining()
		} else {
			stats.Insufficient++
		}

		key := strings.ToLower(strings.TrimSpace(p.Destination))
		if key != "" {
			destinations[key] = struct{}{}
		}
	}

	stats.Destinations = len(destinations)
	return stats
}

// FilterByDestination returns plans whose destination contains substr (case-insensitive).
func FilterByDestination(plans []model.TripPlan, substr string) []model.TripPlan {
	if substr == "" {
		return plans
	}
	needle := strings.ToLower(substr)
	var out []model.TripPlan
	for _, p := range plans {
		if strings.Contains(strings.ToLower(p.Destination), needle) {
			out = append(out, p)
		}
	}
	return out
}
