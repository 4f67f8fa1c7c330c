package tui

import (
	"time"

	"github.com/theirongolddev/tripbudget/internal/form"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// NewTripForm builds the new-trip form bound to in. Field validators are
// the same ones the HTTP API applies.
func NewTripForm(in *form.TripInput) *huh.Form {
	monthOpts := huh.NewOptions(form.Months()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Destination").
				Placeholder("e.g., Paris, France").
				Value(&in.Destination).
				Validate(form.Destination),
			huh.NewInput().
				Title("Budget (USD)").
				Placeholder("e.g., 5000").
				Value(&in.Budget).
				Validate(form.Budget),
			huh.NewInput().
				Title("Duration (days)").
				Placeholder("e.g., 7").
				Value(&in.Duration).
				Validate(form.Duration),
			huh.NewInput().
				Title("Travelers").
				Placeholder("e.g., 2").
				Value(&in.People).
				Validate(form.People),
			huh.NewSelect[string]().
				Title("Travel month").
				Options(monthOpts...).
				Height(6).
				Value(&in.Month).
				Validate(form.Month),
		).Title("Plan a new trip"),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

type planReadyMsg struct{}

type processingTickMsg time.Time

// analyzeCmd fires planReadyMsg once the simulated analysis delay elapses.
func analyzeCmd(delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return planReadyMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return planReadyMsg{} })
}

func processingTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return processingTickMsg(t)
	})
}
