package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Month is a calendar month that encodes as its English name.
type Month time.Month

// Months lists January through December.
var Months = []Month{
	Month(time.January), Month(time.February), Month(time.March),
	Month(time.April), Month(time.May), Month(time.June),
	Month(time.July), Month(time.August), Month(time.September),
	Month(time.October), Month(time.November), Month(time.December),
}

// ParseMonth resolves a full English month name, ignoring case.
func ParseMonth(name string) (Month, bool) {
	name = strings.TrimSpace(name)
	for _, m := range Months {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}

func (m Month) String() string {
	return time.Month(m).String()
}

// Valid reports whether m is January..December.
func (m Month) Valid() bool {
	return m >= Month(time.January) && m <= Month(time.December)
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid month %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(text []byte) error {
	parsed, ok := ParseMonth(string(text))
	if !ok {
		return fmt.Errorf("invalid month %q", string(text))
	}
	*m = parsed
	return nil
}

// TripRequest is the validated input for a budget estimate.
type TripRequest struct {
	Destination string  `json:"destination"`
	Budget      float64 `json:"budget"`
	Duration    int     `json:"duration"`
	People      int     `json:"people"`
	Month       Month   `json:"month"`
}

// TripPlan is a saved estimate. It is never mutated after creation.
type TripPlan struct {
	ID string `json:"id"`
	TripRequest
	CreatedAt time.Time `json:"createdAt"`

	Breakdown        ExpenseBreakdown `json:"breakdown"`
	TotalEstimated   int64            `json:"totalEstimated"`
	IsSufficient     bool             `json:"isSufficient"`
	ExtraRequired    float64          `json:"extraRequired"`
	AIRecommendation string           `json:"aiRecommendation"`
}

// Remaining is the budget left after the estimate; negative when short.
func (p TripPlan) Remaining() float64 {
	return p.Budget - float64(p.TotalEstimated)
}

// CostPerDay is the estimated total spread over the trip duration.
func (p TripPlan) CostPerDay() int64 {
	if p.Duration <= 0 {
		return 0
	}
	return int64(math.Round(float64(p.TotalEstimated) / float64(p.Duration)))
}

// Share returns the fraction of the total spent on c.
func (p TripPlan) Share(c Category) float64 {
	if p.TotalEstimated == 0 {
		return 0
	}
	return float64(p.Breakdown.Amount(c)) / float64(p.TotalEstimated)
}
