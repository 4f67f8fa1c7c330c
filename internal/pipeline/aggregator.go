package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/tripbudget/internal/model"
)

// AggregateMonths computes per-month totals. Every month is present so a
// chart shows gaps as zeros; the result runs January to December.
func AggregateMonths(plans []model.TripPlan) []model.MonthStats {
	months := make([]model.MonthStats, len(model.Months))
	for i, m := range model.Months {
		months[i].Month = m
	}
	for _, p := range plans {
		if !p.Month.Valid() {
			continue
		}
		ms := &months[int(p.Month)-1]
		ms.Trips++
		ms.Budget += p.Budget
		ms.TotalEstimated += p.TotalEstimated
	}
	return months
}

// AggregateCollections computes per-collection totals, sorted by estimated
// cost descending.
func AggregateCollections(outcomes []Outcome) []model.CollectionStats {
	colMap := make(map[string]*model.CollectionStats)

	for _, o := range outcomes {
		cs, ok := colMap[o.Entry.Collection]
		if !ok {
			cs = &model.CollectionStats{Collection: o.Entry.Collection}
			colMap[o.Entry.Collection] = cs
		}
		if !o.OK() {
			cs.Invalid++
			continue
		}
		cs.Trips++
		cs.TotalEstimated += o.Plan.TotalEstimated
		if !o.Plan.IsSufficient {
			cs.Insufficient++
			cs.Shortfall += o.Plan.ExtraRequired
		}
	}

	collections := make([]model.CollectionStats, 0, len(colMap))
	for _, cs := range colMap {
		collections = append(collections, *cs)
	}
	sort.Slice(collections, func(i, j int) bool {
		if collections[i].TotalEstimated != collections[j].TotalEstimated {
			return collections[i].TotalEstimated > collections[j].TotalEstimated
		}
		return collections[i].Collection < collections[j].Collection
	})

	return collections
}

// FilterByCollection returns outcomes whose collection contains substr,
// ignoring case.
func FilterByCollection(outcomes []Outcome, substr string) []Outcome {
	substr = strings.ToLower(substr)
	var out []Outcome
	for _, o := range outcomes {
		if strings.Contains(strings.ToLower(o.Entry.Collection), substr) {
			out = append(out, o)
		}
	}
	return out
}
