package pipeline

import (
	"github.com/theirongolddev/tripbudget/internal/form"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/source"
	"github.com/theirongolddev/tripbudget/internal/trips"
)

// Outcome is the result of planning one entry. Plan is set only when
// Errors is empty.
type Outcome struct {
	Entry  source.Entry
	Plan   model.TripPlan
	Errors form.FieldErrors
}

// OK reports whether the entry passed validation and was planned.
func (o Outcome) OK() bool {
	return o.Errors.Empty()
}

// Plan validates every entry and estimates the valid ones into store, in
// entry order so a seeded estimator gives repeatable results.
func Plan(store *trips.Store, entries []source.Entry) []Outcome {
	outcomes := make([]Outcome, len(entries))
	for i, e := range entries {
		outcomes[i].Entry = e
		req, errs := form.ParseTrip(e.Input)
		if !errs.Empty() {
			outcomes[i].Errors = errs
			continue
		}
		outcomes[i].Plan = store.Create(req)
	}
	return outcomes
}

// Plans returns the plans of the successful outcomes.
func Plans(outcomes []Outcome) []model.TripPlan {
	var plans []model.TripPlan
	for _, o := range outcomes {
		if o.OK() {
			plans = append(plans, o.Plan)
		}
	}
	return plans
}
