package estimator

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tripbudget/internal/cli"
	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/model"
)

// constSource always returns the same value, pinning every draw to one end
// of its range: 0 gives the minimum, ^uint64(0) gives just under the maximum.
type constSource uint64

func (s constSource) Uint64() uint64 { return uint64(s) }

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestEstimator(opts ...Option) *Estimator {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("trip_%d", n)
		}),
	}
	return New(append(base, opts...)...)
}

func paris(budget float64) model.TripRequest {
	return model.TripRequest{
		Destination: "Paris, France",
		Budget:      budget,
		Duration:    7,
		People:      2,
		Month:       model.Month(time.June),
	}
}

func TestEstimate_TotalIsSumOfParts(t *testing.T) {
	e := newTestEstimator(WithSeed(1))
	for i := 0; i < 50; i++ {
		plan := e.Estimate(paris(5000))
		b := plan.Breakdown
		assert.Equal(t, b.Travel+b.Stay+b.Food+b.Activities+b.Miscellaneous, plan.TotalEstimated)
		for _, ca := range b.Categories() {
			assert.GreaterOrEqual(t, ca.Amount, int64(0), ca.Category)
		}
	}
}

func TestEstimate_MinimumAmounts(t *testing.T) {
	e := newTestEstimator(WithSource(constSource(0)))
	plan := e.Estimate(paris(5000))

	// 7 days, 2 people: per-person categories use 14 units, stay uses 7.
	assert.Equal(t, model.ExpenseBreakdown{
		Travel:        50 * 14,
		Stay:          80 * 7,
		Food:          40 * 14,
		Activities:    30 * 14,
		Miscellaneous: 20 * 14,
	}, plan.Breakdown)
	assert.EqualValues(t, 2520, plan.TotalEstimated)
}

func TestEstimate_MaximumAmountsStayBelowUpperBound(t *testing.T) {
	e := newTestEstimator(WithSource(constSource(^uint64(0))))
	plan := e.Estimate(paris(5000))

	assert.LessOrEqual(t, plan.Breakdown.Travel, int64(150*14))
	assert.LessOrEqual(t, plan.Breakdown.Stay, int64(230*7))
	assert.LessOrEqual(t, plan.Breakdown.Food, int64(100*14))
	assert.LessOrEqual(t, plan.Breakdown.Activities, int64(110*14))
	assert.LessOrEqual(t, plan.Breakdown.Miscellaneous, int64(60*14))
	assert.Greater(t, plan.Breakdown.Stay, int64(229*7))
}

func TestEstimate_StayIgnoresPeople(t *testing.T) {
	solo := paris(5000)
	solo.People = 1
	group := paris(5000)
	group.People = 4

	a := newTestEstimator(WithSeed(99)).Estimate(solo)
	b := newTestEstimator(WithSeed(99)).Estimate(group)

	assert.Equal(t, a.Breakdown.Stay, b.Breakdown.Stay, "stay must not scale with people")
	assert.NotEqual(t, a.Breakdown.Travel, b.Breakdown.Travel)
	assert.NotEqual(t, a.Breakdown.Food, b.Breakdown.Food)
	assert.NotEqual(t, a.Breakdown.Activities, b.Breakdown.Activities)
	assert.NotEqual(t, a.Breakdown.Miscellaneous, b.Breakdown.Miscellaneous)
}

func TestEstimate_DeterministicForSeed(t *testing.T) {
	a := newTestEstimator(WithSeed(7))
	b := newTestEstimator(WithSeed(7))
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Estimate(paris(5000)), b.Estimate(paris(5000)))
	}
}

func TestEstimate_ParisSufficient(t *testing.T) {
	e := newTestEstimator(WithSource(constSource(0)))
	plan := e.Estimate(paris(5000))

	require.LessOrEqual(t, plan.TotalEstimated, int64(5000))
	assert.True(t, plan.IsSufficient)
	assert.Zero(t, plan.ExtraRequired)
	assert.Contains(t, plan.AIRecommendation, "Paris, France")
	assert.NotContains(t, plan.AIRecommendation, "more to be comfortable")
	assert.Equal(t, "trip_1", plan.ID)
	assert.Equal(t, fixedNow, plan.CreatedAt)
	assert.Equal(t, paris(5000), plan.TripRequest)
}

func TestEstimate_ParisRandomBudget5000(t *testing.T) {
	e := newTestEstimator(WithSeed(2024))
	for i := 0; i < 20; i++ {
		plan := e.Estimate(paris(5000))
		if plan.TotalEstimated <= 5000 {
			assert.True(t, plan.IsSufficient)
			assert.Zero(t, plan.ExtraRequired)
			assert.Contains(t, plan.AIRecommendation, "Paris, France")
			assert.NotContains(t, plan.AIRecommendation, "more to be comfortable")
		} else {
			assert.False(t, plan.IsSufficient)
			assert.InDelta(t, float64(plan.TotalEstimated)-5000, plan.ExtraRequired, 1e-9)
		}
	}
}

func TestEstimate_ParisInsufficient(t *testing.T) {
	e := newTestEstimator(WithSeed(3))
	plan := e.Estimate(paris(100))

	require.False(t, plan.IsSufficient)
	extra := plan.TotalEstimated - 100
	assert.Greater(t, extra, int64(0))
	assert.InDelta(t, float64(extra), plan.ExtraRequired, 1e-9)
	assert.Contains(t, plan.AIRecommendation, "Paris, France")
	assert.Contains(t, plan.AIRecommendation, "$"+cli.FormatNumber(extra)+" more to be comfortable")
	for _, step := range []string{"1) ", "2) ", "3) ", "4) "} {
		assert.Contains(t, plan.AIRecommendation, step)
	}
}

func TestEstimate_BudgetEqualToTotalIsSufficient(t *testing.T) {
	plan := newTestEstimator(WithSource(constSource(0))).Estimate(paris(2520))
	assert.True(t, plan.IsSufficient)
	assert.Zero(t, plan.ExtraRequired)
}

func TestEstimate_FractionalShortfall(t *testing.T) {
	plan := newTestEstimator(WithSource(constSource(0))).Estimate(paris(2519.5))
	require.False(t, plan.IsSufficient)
	assert.InDelta(t, 0.5, plan.ExtraRequired, 1e-9)
	assert.Contains(t, plan.AIRecommendation, "$0.5 more")
}

func TestEstimate_CustomRates(t *testing.T) {
	rates := config.DefaultRates()
	rates[model.CategoryFood] = config.DailyRate{Min: 10, Max: 10, PerPerson: true}

	plan := newTestEstimator(WithRates(rates), WithSource(constSource(0))).Estimate(paris(5000))
	assert.EqualValues(t, 10*14, plan.Breakdown.Food)
	assert.EqualValues(t, 80*7, plan.Breakdown.Stay)
}

func TestFromConfig_SeedAndOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Estimator.Seed = 11
	lo, hi := 1.0, 1.0
	cfg.Estimator.Rates = map[string]config.RateOverride{"miscellaneous": {Min: &lo, Max: &hi}}

	a := FromConfig(cfg, WithClock(func() time.Time { return fixedNow }), WithIDGenerator(func() string { return "x" }))
	b := FromConfig(cfg, WithClock(func() time.Time { return fixedNow }), WithIDGenerator(func() string { return "x" }))

	pa, pb := a.Estimate(paris(5000)), b.Estimate(paris(5000))
	assert.Equal(t, pa, pb)
	assert.EqualValues(t, 14, pa.Breakdown.Miscellaneous)
}

func TestEstimate_LargestTrip(t *testing.T) {
	req := model.TripRequest{Destination: "Everywhere", Budget: 1, Duration: 3650, People: 1000, Month: model.Month(time.July)}
	for _, src := range []constSource{0, ^constSource(0)} {
		plan := newTestEstimator(WithSource(src)).Estimate(req)
		for _, c := range model.Categories {
			assert.Positive(t, plan.Breakdown.Amount(c), "%s", c)
		}
		assert.Equal(t, plan.Breakdown.Total(), plan.TotalEstimated)
		assert.False(t, plan.IsSufficient)
	}
}

func TestClampAmount(t *testing.T) {
	assert.EqualValues(t, 0, clampAmount(-5))
	assert.EqualValues(t, 0, clampAmount(math.NaN()))
	assert.EqualValues(t, 42, clampAmount(42))
	assert.EqualValues(t, maxAmount, clampAmount(1e300))
	assert.EqualValues(t, maxAmount, clampAmount(math.Inf(1)))
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0.5:         "0.5",
		999:         "999",
		4321:        "4,321",
		100.125:     "100.125",
		1234567.891: "1,234,567.891",
		2.34567:     "2.346",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(in), "FormatAmount(%v)", in)
	}
}

func TestRecommendationTemplates(t *testing.T) {
	good := Recommendation(true, "Kyoto", 0)
	assert.True(t, strings.HasPrefix(good, "Great news! Your budget for Kyoto looks solid."))
	assert.Contains(t, good, "10-15%")

	bad := Recommendation(false, "Kyoto", 12500)
	assert.True(t, strings.HasPrefix(bad, "Your Kyoto trip needs approximately $12,500 more to be comfortable."))
	assert.Contains(t, bad, "20-30% savings")
}
