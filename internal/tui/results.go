package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/tripbudget/internal/cli"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/tui/components"
	"github.com/theirongolddev/tripbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func categoryColor(c model.Category) lipgloss.Color {
	t := theme.Active
	switch c {
	case model.CategoryTravel:
		return t.Blue
	case model.CategoryStay:
		return t.Magenta
	case model.CategoryFood:
		return t.Orange
	case model.CategoryActivities:
		return t.Green
	default:
		return t.Yellow
	}
}

// statusLine is the one-line verdict under the status card title.
func statusLine(p model.TripPlan) (title, body string) {
	if p.IsSufficient {
		return "Budget Sufficient!", cli.FormatUSD(p.Remaining()) + " remaining"
	}
	return "Budget Insufficient", "Need " + cli.FormatUSD(p.ExtraRequired) + " more"
}

func (a App) renderResults(p model.TripPlan, cw int) string {
	t := theme.Active
	var b strings.Builder

	headStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)

	b.WriteString(headStyle.Render("Trip to " + p.Destination))
	b.WriteString("\n")
	b.WriteString(subStyle.Render(fmt.Sprintf("%s in %s · %s",
		cli.FormatDays(p.Duration), p.Month, cli.FormatTravelers(p.People))))
	b.WriteString("\n\n")

	// Row 1: verdict
	title, body := statusLine(p)
	b.WriteString(components.StatusCard(title, body, p.IsSufficient, cw))
	b.WriteString("\n")

	// Row 2: breakdown chart and category shares
	cats := p.Breakdown.Categories()
	bars := make([]components.HBar, 0, len(cats))
	for _, ca := range cats {
		bars = append(bars, components.HBar{
			Label: ca.Category.Label(),
			Value: float64(ca.Amount),
			Note:  cli.FormatUSD(float64(ca.Amount)),
			Color: categoryColor(ca.Category),
		})
	}

	var shares strings.Builder
	labelW := len("Miscellaneous")
	usedPct := 0.0
	if p.Budget > 0 {
		usedPct = float64(p.TotalEstimated) / p.Budget
	}

	var chartW, sharesW int
	if a.isCompactLayout() {
		chartW, sharesW = cw, cw
	} else {
		halves := components.LayoutRow(cw, 2)
		chartW, sharesW = halves[0], halves[1]
	}
	barW := max(10, components.CardInnerWidth(sharesW)-labelW-20)
	for i, ca := range cats {
		if i > 0 {
			shares.WriteString("\n")
		}
		shares.WriteString(components.LabeledBar(
			ca.Category.Label(), p.Share(ca.Category), "",
			string(categoryColor(ca.Category)), labelW, barW))
	}
	shares.WriteString("\n\n")
	shares.WriteString(components.LabeledBar("Budget used", usedPct, "", "", labelW, barW))

	chart := components.ContentCard("Expense Breakdown", components.HBarChart(bars, components.CardInnerWidth(chartW)), chartW)
	shareCard := components.ContentCard("Share of Estimate", shares.String(), sharesW)
	if a.isCompactLayout() {
		b.WriteString(chart)
		b.WriteString("\n")
		b.WriteString(shareCard)
	} else {
		b.WriteString(components.CardRow([]string{chart, shareCard}))
	}
	b.WriteString("\n")

	// Row 3: summary
	remainLabel := "Remaining"
	remain := p.Remaining()
	if !p.IsSufficient {
		remainLabel = "Shortfall"
		remain = p.ExtraRequired
	}
	summary := []components.Metric{
		{Label: "Total Budget", Value: cli.FormatUSD(p.Budget)},
		{Label: "Estimated Cost", Value: cli.FormatUSD(float64(p.TotalEstimated))},
		{Label: remainLabel, Value: cli.FormatUSD(math.Abs(remain))},
		{Label: "Cost per Day", Value: cli.FormatUSD(float64(p.CostPerDay()))},
	}
	b.WriteString(components.MetricCardRow(summary, cw))
	b.WriteString("\n")

	// Row 4: recommendation
	b.WriteString(components.ContentCard("AI Recommendation", p.AIRecommendation, cw))
	return b.String()
}
