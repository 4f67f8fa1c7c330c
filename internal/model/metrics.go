package model

// DashboardStats holds the quick stats shown above the trip list.
type DashboardStats struct {
	TotalTrips     int     `json:"totalTrips"`
	Destinations   int     `json:"destinations"`
	BudgetSaved    float64 `json:"budgetSaved"`
	Sufficient     int     `json:"sufficient"`
	Insufficient   int     `json:"insufficient"`
	TotalEstimated int64   `json:"totalEstimated"`
}

// SufficientRate is the fraction of trips whose budget covers the estimate.
func (s DashboardStats) SufficientRate() float64 {
	if s.TotalTrips == 0 {
		return 0
	}
	return float64(s.Sufficient) / float64(s.TotalTrips)
}

// MonthStats holds trip totals for one travel month.
type MonthStats struct {
	Month          Month   `json:"month"`
	Trips          int     `json:"trips"`
	Budget         float64 `json:"budget"`
	TotalEstimated int64   `json:"totalEstimated"`
}

// CollectionStats holds trip totals for one batch collection.
type CollectionStats struct {
	Collection     string  `json:"collection"`
	Trips          int     `json:"trips"`
	Invalid        int     `json:"invalid"`
	Insufficient   int     `json:"insufficient"`
	TotalEstimated int64   `json:"totalEstimated"`
	Shortfall      float64 `json:"shortfall"`
}
