package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tripbudget/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBg        = lipgloss.Color("#100F0F")
	ColorSurface   = lipgloss.Color("#1C1B1A")
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// CategoryColors maps each expense category to its chart color.
var CategoryColors = map[model.Category]lipgloss.Color{
	model.CategoryTravel:        ColorBlue,
	model.CategoryStay:          ColorPurple,
	model.CategoryFood:          ColorOrange,
	model.CategoryActivities:    ColorGreen,
	model.CategoryMiscellaneous: ColorYellow,
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
// A row consisting of the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			if w := lipgloss.Width(h); w > widths[i] {
				widths[i] = w
			}
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols && lipgloss.Width(cell) > widths[i] {
					widths[i] = lipgloss.Width(cell)
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			padded := fmt.Sprintf(" %-*s ", widths[i], h)
			b.WriteString(headerStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			w := widths[i]
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			// Right-align numeric columns (all except first)
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", w, cell)
			} else {
				padded = fmt.Sprintf(" %*s ", w, cell)
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")

	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total float64, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}

	pct := current / total
	if pct > 1 {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}

	filled := int(pct * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", mutedStyle.Render(bar), FormatPercent(current/total))
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen < 0 {
		barLen = 0
	}
	if barLen > maxWidth {
		barLen = maxWidth
	}
	bar := strings.Repeat("█", barLen)
	return fmt.Sprintf("  %-14s %s", label, bar)
}

// RenderPlan renders a trip plan for terminal output: a summary table,
// the breakdown with shares, the budget status, and the recommendation.
func RenderPlan(p model.TripPlan) string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("Trip to %s", p.Destination)))
	b.WriteString("\n\n")

	b.WriteString(RenderTable(Table{
		Title: "Summary",
		Rows: [][]string{
			{"Month", p.Month.String()},
			{"Duration", FormatDays(p.Duration)},
			{"Travelers", FormatTravelers(p.People)},
			{"Budget", FormatUSD(p.Budget)},
			{"Estimated", FormatUSD(float64(p.TotalEstimated))},
			{"Remaining", FormatSignedUSD(p.Remaining())},
			{"Per day", FormatUSD(float64(p.CostPerDay()))},
		},
	}))
	b.WriteString("\n")

	rows := make([][]string, 0, len(model.Categories)+2)
	var maxAmount int64
	for _, ca := range p.Breakdown.Categories() {
		if ca.Amount > maxAmount {
			maxAmount = ca.Amount
		}
		rows = append(rows, []string{
			ca.Category.Label(),
			FormatUSD(float64(ca.Amount)),
			FormatPercent(p.Share(ca.Category)),
		})
	}
	rows = append(rows, []string{"---"},
		[]string{"Total", FormatUSD(float64(p.TotalEstimated)), FormatPercent(1)})
	b.WriteString(RenderTable(Table{
		Title:   "Expense Breakdown",
		Headers: []string{"Category", "Amount", "Share"},
		Rows:    rows,
	}))
	b.WriteString("\n")

	for _, ca := range p.Breakdown.Categories() {
		bar := RenderHorizontalBar(ca.Category.Label(), float64(ca.Amount), float64(maxAmount), 30)
		b.WriteString(lipgloss.NewStyle().Foreground(CategoryColors[ca.Category]).Render(bar))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(RenderStatus(p))
	b.WriteString("\n  ")
	b.WriteString(mutedStyle.Render("Budget used "))
	b.WriteString(RenderProgressBar(float64(p.TotalEstimated), p.Budget, 30))
	b.WriteString("\n\n")

	b.WriteString("  ")
	b.WriteString(headerStyle.Render("Recommendation"))
	b.WriteString("\n")
	for _, line := range strings.Split(p.AIRecommendation, "\n") {
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderStatus renders the one-line budget verdict for a plan.
func RenderStatus(p model.TripPlan) string {
	if p.IsSufficient {
		return goodStyle.Render("Budget is sufficient") +
			mutedStyle.Render(fmt.Sprintf("  %s remaining", FormatUSD(p.Remaining())))
	}
	return warnStyle.Render("Budget is insufficient") +
		mutedStyle.Render(fmt.Sprintf("  %s more needed", FormatUSD(p.ExtraRequired)))
}
