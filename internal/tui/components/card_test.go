package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/tripbudget/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// breakdownCard mirrors the expense card on the results screen.
func breakdownCard(width int) string {
	body := strings.Join([]string{
		"Travel         $1,400",
		"Stay             $560",
		"Food             $420",
		"Activities       $280",
		"Miscellaneous    $140",
	}, "\n")
	return ContentCard("Expense Breakdown", body, width)
}

func TestCardRow_StatusBesideBreakdown(t *testing.T) {
	theme.SetActive("flexoki-dark")

	status := StatusCard("Budget Insufficient", "Need $2,420 more", false, 30)
	breakdown := breakdownCard(40)

	statusLines := strings.Count(status, "\n") + 1
	breakdownLines := strings.Count(breakdown, "\n") + 1
	if statusLines >= breakdownLines {
		t.Fatalf("status card has %d lines, breakdown %d; want status shorter", statusLines, breakdownLines)
	}

	row := CardRow([]string{status, breakdown})
	lines := strings.Split(row, "\n")
	if len(lines) != breakdownLines {
		t.Fatalf("row height = %d, want %d", len(lines), breakdownLines)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 70 {
			t.Errorf("line %d width = %d, want 70", i, w)
		}
		if !strings.Contains(line, "\x1b[") {
			t.Errorf("line %d has no styling: %q", i, line)
		}
	}
	if !strings.Contains(row, "Need $2,420 more") || !strings.Contains(row, "Miscellaneous") {
		t.Errorf("row missing content:\n%s", row)
	}
}

func TestStatusCard_GoodAndBadDiffer(t *testing.T) {
	theme.SetActive("flexoki-dark")

	good := StatusCard("Budget", "$2,480 remaining", true, 36)
	bad := StatusCard("Budget", "$2,480 remaining", false, 36)
	if good == bad {
		t.Fatal("sufficient and insufficient cards render identically")
	}
	if strings.Count(good, "\n") != strings.Count(bad, "\n") {
		t.Errorf("card heights differ:\n%s\n%s", good, bad)
	}
}

func TestMetricCardRow_ResultsSummary(t *testing.T) {
	theme.SetActive("flexoki-dark")

	cards := []Metric{
		{Label: "Total Budget", Value: "$5,000"},
		{Label: "Estimated Cost", Value: "$2,520"},
		{Label: "Remaining", Value: "$2,480"},
		{Label: "Cost per Day", Value: "$360"},
	}
	for _, width := range []int{60, 81, 120} {
		row := MetricCardRow(cards, width)
		for i, line := range strings.Split(row, "\n") {
			if w := lipgloss.Width(line); w != width {
				t.Errorf("width %d: line %d is %d wide", width, i, w)
			}
		}
		for _, c := range cards {
			if !strings.Contains(row, c.Value) {
				t.Errorf("width %d: row missing %s", width, c.Value)
			}
		}
	}
}
