package config

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/tripbudget/internal/model"
)

// DailyRate is the uniform range of a per-unit daily cost in USD.
// PerPerson rates scale with duration * people; the rest with duration only.
type DailyRate struct {
	Min       float64
	Max       float64
	PerPerson bool
}

// Rates maps every category to its daily range.
type Rates map[model.Category]DailyRate

// DefaultRates returns the built-in ranges. Stay is shared lodging and
// does not scale with the number of travelers.
func DefaultRates() Rates {
	return Rates{
		model.CategoryTravel:        {Min: 50, Max: 150, PerPerson: true},
		model.CategoryStay:          {Min: 80, Max: 230, PerPerson: false},
		model.CategoryFood:          {Min: 40, Max: 100, PerPerson: true},
		model.CategoryActivities:    {Min: 30, Max: 110, PerPerson: true},
		model.CategoryMiscellaneous: {Min: 20, Max: 60, PerPerson: true},
	}
}

// Rates returns the default ranges with configured overrides applied.
// Only Min and Max can be overridden.
func (c Config) Rates() Rates {
	rates := DefaultRates()
	for name, o := range c.Estimator.Rates {
		cat := model.Category(name)
		r, ok := rates[cat]
		if !ok {
			continue
		}
		if o.Min != nil {
			r.Min = *o.Min
		}
		if o.Max != nil {
			r.Max = *o.Max
		}
		rates[cat] = r
	}
	return rates
}

func (c Config) validateRates() []error {
	names := make([]string, 0, len(c.Estimator.Rates))
	for name := range c.Estimator.Rates {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if !model.Category(name).Valid() {
			errs = append(errs, fmt.Errorf("estimator.rates.%s: unknown category", name))
		}
	}

	rates := c.Rates()
	for _, cat := range model.Categories {
		r := rates[cat]
		if r.Min < 0 {
			errs = append(errs, fmt.Errorf("estimator.rates.%s: min must not be negative", cat))
		}
		if r.Max < r.Min {
			errs = append(errs, fmt.Errorf("estimator.rates.%s: max %.2f below min %.2f", cat, r.Max, r.Min))
		}
	}
	return errs
}
