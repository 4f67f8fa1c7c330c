package model

// Category names one line of an expense breakdown.
type Category string

const (
	CategoryTravel        Category = "travel"
	CategoryStay          Category = "stay"
	CategoryFood          Category = "food"
	CategoryActivities    Category = "activities"
	CategoryMiscellaneous Category = "miscellaneous"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTravel,
	CategoryStay,
	CategoryFood,
	CategoryActivities,
	CategoryMiscellaneous,
}

// Label returns the display name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryTravel:
		return "Travel"
	case CategoryStay:
		return "Stay"
	case CategoryFood:
		return "Food"
	case CategoryActivities:
		return "Activities"
	case CategoryMiscellaneous:
		return "Miscellaneous"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ExpenseBreakdown holds rounded USD amounts per category.
type ExpenseBreakdown struct {
	Travel        int64 `json:"travel"`
	Stay          int64 `json:"stay"`
	Food          int64 `json:"food"`
	Activities    int64 `json:"activities"`
	Miscellaneous int64 `json:"miscellaneous"`
}

// CategoryAmount pairs a category with its amount.
type CategoryAmount struct {
	Category Category
	Amount   int64
}

// Total returns the sum of all five categories.
func (b ExpenseBreakdown) Total() int64 {
	return b.Travel + b.Stay + b.Food + b.Activities + b.Miscellaneous
}

// Amount returns the amount for a single category.
func (b ExpenseBreakdown) Amount(c Category) int64 {
	switch c {
	case CategoryTravel:
		return b.Travel
	case CategoryStay:
		return b.Stay
	case CategoryFood:
		return b.Food
	case CategoryActivities:
		return b.Activities
	case CategoryMiscellaneous:
		return b.Miscellaneous
	}
	return 0
}

// Categories returns the breakdown in display order.
func (b ExpenseBreakdown) Categories() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, CategoryAmount{Category: c, Amount: b.Amount(c)})
	}
	return out
}
