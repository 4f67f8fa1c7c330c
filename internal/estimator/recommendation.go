package estimator

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Recommendation returns the fixed advice text for a plan outcome.
func Recommendation(sufficient bool, destination string, extraRequired float64) string {
	if sufficient {
		return fmt.Sprintf("Great news! Your budget for %s looks solid. "+
			"Consider setting aside 10-15%% for unexpected expenses or spontaneous experiences. "+
			"Pro tip: Book activities in advance to secure better rates and availability. "+
			"You might even have room for a special dining experience or a unique local tour!",
			destination)
	}
	return fmt.Sprintf("Your %s trip needs approximately $%s more to be comfortable. "+
		"Consider these options: "+
		"1) Extend your trip planning by 2-3 months to save more "+
		"2) Look for off-season travel dates for 20-30%% savings "+
		"3) Consider alternative accommodations like Airbnb or hostels "+
		"4) Use travel reward points or credit card benefits.",
		destination, FormatAmount(extraRequired))
}

// FormatAmount groups thousands en-US style with at most three decimals.
// e.g., 4321 -> "4,321", 1234.5 -> "1,234.5"
func FormatAmount(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}
