package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/tripbudget/internal/cli"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/tui/components"
	"github.com/theirongolddev/tripbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// greeting personalizes the dashboard header.
func (a App) greeting() string {
	if u, ok := a.currentUser(); ok {
		return "Welcome back, " + u.FirstName()
	}
	return "Welcome back"
}

func (a App) renderDashboard(cw int) string {
	t := theme.Active
	stats := a.store.Stats()
	plans := a.store.List()
	var b strings.Builder

	headStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)

	b.WriteString(headStyle.Render(a.greeting()))
	b.WriteString("\n")
	b.WriteString(subStyle.Render("Plan your next adventure with a budget that fits."))
	b.WriteString("\n\n")

	// Row 1: quick stats
	rate := "-"
	if stats.TotalTrips > 0 {
		rate = cli.FormatPercent(stats.SufficientRate())
	}
	cards := []components.Metric{
		{Label: "Total Trips", Value: cli.FormatNumber(int64(stats.TotalTrips)), Delta: plural(stats.Insufficient, "over budget")},
		{Label: "Budget Saved", Value: cli.FormatUSD(stats.BudgetSaved), Delta: "across sufficient trips"},
		{Label: "Destinations", Value: cli.FormatNumber(int64(stats.Destinations)), Delta: "unique places"},
		{Label: "On Budget", Value: rate, Delta: plural(stats.Sufficient, "sufficient")},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(cards[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(cards[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(cards, cw))
	}
	b.WriteString("\n")

	if len(plans) == 0 {
		b.WriteString(a.renderEmptyState(cw))
		return b.String()
	}

	// Row 2: trip list and estimate chart
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Your Trips", a.renderTripList(plans, components.CardInnerWidth(cw)), cw))
		return b.String()
	}

	halves := components.LayoutRow(cw, 2)
	list := components.ContentCard("Your Trips", a.renderTripList(plans, components.CardInnerWidth(halves[0])), halves[0])

	vals := make([]float64, len(plans))
	labels := make([]string, len(plans))
	for i, p := range plans {
		vals[i] = float64(p.TotalEstimated)
		labels[i] = truncStr(p.Destination, 6)
	}
	chart := components.ContentCard(
		"Estimated Cost per Trip",
		components.BarChart(vals, labels, t.Accent, components.CardInnerWidth(halves[1]), 10),
		halves[1],
	)
	b.WriteString(components.CardRow([]string{list, chart}))
	return b.String()
}

func (a App) renderEmptyState(cw int) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	body := titleStyle.Render("No trips planned yet") + "\n" +
		bodyStyle.Render("Start planning your first trip and let our AI help you budget smartly.") + "\n\n" +
		bodyStyle.Render("Press ") + keyStyle.Render("n") + bodyStyle.Render(" to plan your first trip")
	return components.ContentCard("", body, cw)
}

func (a App) renderTripList(plans []model.TripPlan, w int) string {
	t := theme.Active

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	goodStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	badStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	costW := 10
	nameW := max(8, w-costW-4)

	var b strings.Builder
	for i, p := range plans {
		mark := goodStyle.Render("●")
		if !p.IsSufficient {
			mark = badStyle.Render("●")
		}
		name := fmt.Sprintf("%-*s", nameW, truncStr(p.Destination, nameW))
		cost := fmt.Sprintf("%*s", costW, cli.FormatUSD(float64(p.TotalEstimated)))

		if i == a.cursor {
			b.WriteString(selStyle.Render("▸ "+name+" ") + selStyle.Render(cost))
		} else {
			b.WriteString(mark + rowStyle.Render(" "+name+" ") + rowStyle.Render(cost))
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s in %s · %s",
			cli.FormatDays(p.Duration), p.Month, cli.FormatTravelers(p.People))))
		if i < len(plans)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func plural(n int, what string) string {
	return fmt.Sprintf("%d %s", n, what)
}
