// Package estimator turns trip parameters into a randomized budget plan.
package estimator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/model"
)

// Estimator draws per-category daily costs from configured ranges.
// It is not safe for concurrent use.
type Estimator struct {
	rng   *rand.Rand
	rates config.Rates
	now   func() time.Time
	newID func() string
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSource sets the random source.
func WithSource(src rand.Source) Option {
	return func(e *Estimator) {
		e.rng = rand.New(src)
	}
}

// WithSeed uses a PCG source seeded with seed.
func WithSeed(seed uint64) Option {
	return WithSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// WithRates replaces the daily cost ranges.
func WithRates(r config.Rates) Option {
	return func(e *Estimator) {
		e.rates = r
	}
}

// WithClock sets the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		e.now = now
	}
}

// WithIDGenerator sets the plan id generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Estimator) {
		e.newID = newID
	}
}

// New returns an Estimator with default rates, a random seed, and UUIDv7 ids.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		rates: config.DefaultRates(),
		now:   time.Now,
		newID: func() string { return model.NewID("trip") },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// FromConfig builds an Estimator from config rates and seed.
func FromConfig(cfg config.Config, opts ...Option) *Estimator {
	base := []Option{WithRates(cfg.Rates())}
	if cfg.Estimator.Seed != 0 {
		base = append(base, WithSeed(cfg.Estimator.Seed))
	}
	return New(append(base, opts...)...)
}

// Estimate builds a plan for req. The request must already be validated.
func (e *Estimator) Estimate(req model.TripRequest) model.TripPlan {
	var amounts [5]int64
	for i, c := range model.Categories {
		amounts[i] = e.draw(c, req)
	}

	breakdown := model.ExpenseBreakdown{
		Travel:        amounts[0],
		Stay:          amounts[1],
		Food:          amounts[2],
		Activities:    amounts[3],
		Miscellaneous: amounts[4],
	}

	total := breakdown.Total()
	sufficient := req.Budget >= float64(total)
	extra := 0.0
	if !sufficient {
		extra = float64(total) - req.Budget
	}

	return model.TripPlan{
		ID:               e.newID(),
		TripRequest:      req,
		CreatedAt:        e.now(),
		Breakdown:        breakdown,
		TotalEstimated:   total,
		IsSufficient:     sufficient,
		ExtraRequired:    extra,
		AIRecommendation: Recommendation(sufficient, req.Destination, extra),
	}
}

// draw consumes exactly one value from the random source.
func (e *Estimator) draw(c model.Category, req model.TripRequest) int64 {
	rate := e.rates[c]
	daily := rate.Min + e.rng.Float64()*(rate.Max-rate.Min)

	units := float64(req.Duration)
	if rate.PerPerson {
		units *= float64(req.People)
	}
	return clampAmount(math.Round(daily * units))
}

// maxAmount is the largest whole dollar value a float64 holds exactly.
const maxAmount = 1 << 53

func clampAmount(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= maxAmount:
		return maxAmount
	}
	return int64(v)
}
