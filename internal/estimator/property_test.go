package estimator

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/theirongolddev/tripbudget/internal/model"
)

func request(budget float64, duration, people, month int) model.TripRequest {
	return model.TripRequest{
		Destination: "Lisbon, Portugal",
		Budget:      budget,
		Duration:    duration,
		People:      people,
		Month:       model.Month(time.Month(month)),
	}
}

// TestEstimateProperties checks the plan invariants over random valid requests.
func TestEstimateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total equals sum of breakdown", prop.ForAll(
		func(seed uint64, budget float64, duration, people, month int) bool {
			plan := New(WithSeed(seed)).Estimate(request(budget, duration, people, month))
			return plan.TotalEstimated == plan.Breakdown.Total()
		},
		gen.UInt64(), gen.Float64Range(1, 100_000), gen.IntRange(1, 60), gen.IntRange(1, 12), gen.IntRange(1, 12),
	))

	properties.Property("sufficiency matches budget comparison", prop.ForAll(
		func(seed uint64, budget float64, duration, people, month int) bool {
			plan := New(WithSeed(seed)).Estimate(request(budget, duration, people, month))
			return plan.IsSufficient == (budget >= float64(plan.TotalEstimated))
		},
		gen.UInt64(), gen.Float64Range(1, 100_000), gen.IntRange(1, 60), gen.IntRange(1, 12), gen.IntRange(1, 12),
	))

	properties.Property("extra required is the shortfall or zero", prop.ForAll(
		func(seed uint64, budget float64, duration, people, month int) bool {
			plan := New(WithSeed(seed)).Estimate(request(budget, duration, people, month))
			if plan.IsSufficient {
				return plan.ExtraRequired == 0
			}
			return plan.ExtraRequired > 0 &&
				plan.ExtraRequired == float64(plan.TotalEstimated)-budget
		},
		gen.UInt64(), gen.Float64Range(1, 100_000), gen.IntRange(1, 60), gen.IntRange(1, 12), gen.IntRange(1, 12),
	))

	properties.Property("amounts are non-negative for any accepted trip size", prop.ForAll(
		func(seed uint64, duration, people int) bool {
			plan := New(WithSeed(seed)).Estimate(request(1, duration, people, 1))
			for _, c := range model.Categories {
				if plan.Breakdown.Amount(c) < 0 {
					return false
				}
			}
			return plan.TotalEstimated > 0
		},
		gen.UInt64(), gen.IntRange(1, 3650), gen.IntRange(1, 1000),
	))

	properties.Property("stay does not depend on people", prop.ForAll(
		func(seed uint64, duration, people, more int) bool {
			a := New(WithSeed(seed)).Estimate(request(1000, duration, people, 6))
			b := New(WithSeed(seed)).Estimate(request(1000, duration, people+more, 6))
			return a.Breakdown.Stay == b.Breakdown.Stay &&
				b.Breakdown.Travel > a.Breakdown.Travel &&
				b.Breakdown.Food > a.Breakdown.Food
		},
		gen.UInt64(), gen.IntRange(1, 30), gen.IntRange(1, 8), gen.IntRange(1, 8),
	))

	properties.Property("amounts stay inside their ranges", prop.ForAll(
		func(seed uint64, duration, people int) bool {
			plan := New(WithSeed(seed)).Estimate(request(1000, duration, people, 1))
			units := int64(duration * people)
			days := int64(duration)
			b := plan.Breakdown
			return b.Travel >= 50*units && b.Travel <= 150*units &&
				b.Stay >= 80*days && b.Stay <= 230*days &&
				b.Food >= 40*units && b.Food <= 100*units &&
				b.Activities >= 30*units && b.Activities <= 110*units &&
				b.Miscellaneous >= 20*units && b.Miscellaneous <= 60*units
		},
		gen.UInt64(), gen.IntRange(1, 60), gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
