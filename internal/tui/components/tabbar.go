package components

import (
	"strings"

	"github.com/theirongolddev/tripbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single screen in the header bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tab indices.
const (
	TabDashboard = iota
	TabNewTrip
	TabResults
)

// Tabs defines the planner screens.
var Tabs = []Tab{
	{Name: "Dashboard", Key: 'd', KeyPos: 0},
	{Name: "New Trip", Key: 'n', KeyPos: 0},
	{Name: "Results", Key: 'r', KeyPos: 0},
}

const (
	brand       = "◈ TripBudget"
	tabSepWidth = 2
)

// TabBarOffset is the column where the first tab starts.
func TabBarOffset() int {
	return 1 + lipgloss.Width(brand) + 3
}

// TabSeparatorWidth is the gap between adjacent tabs.
func TabSeparatorWidth() int {
	return tabSepWidth
}

// TabVisualWidth returns the rendered width of a tab.
// Inactive tabs show their shortcut in brackets.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name)
	if !active {
		w += 2
		if tab.KeyPos < 0 || tab.KeyPos >= len(tab.Name) {
			w++
		}
	}
	return w
}

// RenderTabBar renders the header with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	brandStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		var rendered string
		switch {
		case i == activeIdx:
			rendered = activeStyle.Render(tab.Name)
		case tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name):
			before := tab.Name[:tab.KeyPos]
			key := string(tab.Name[tab.KeyPos])
			after := tab.Name[tab.KeyPos+1:]
			rendered = inactiveStyle.Render(before) +
				dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
				inactiveStyle.Render(after)
		default:
			rendered = inactiveStyle.Render(tab.Name) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, rendered)
	}

	row := " " + brandStyle.Render(brand) + "   " + strings.Join(parts, strings.Repeat(" ", tabSepWidth))
	return lipgloss.NewStyle().Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
