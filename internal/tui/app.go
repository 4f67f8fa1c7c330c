// Package tui provides the interactive Bubble Tea trip planner.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theirongolddev/tripbudget/internal/auth"
	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/form"
	"github.com/theirongolddev/tripbudget/internal/logging"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/trips"
	"github.com/theirongolddev/tripbudget/internal/tui/components"
	"github.com/theirongolddev/tripbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenDashboard screen = iota
	screenNewTrip
	screenProcessing
	screenResults
	screenSetup
)

const (
	minTerminalWidth = 60
	compactWidth     = 100
	maxContentWidth  = 140
	minContentHeight = 5
)

// Options wires the app to its collaborators.
type Options struct {
	Store      *trips.Store
	Auth       *auth.Service // optional; personalizes the greeting
	Config     config.Config
	ConfigPath string
	FirstRun   bool // show the setup wizard before the dashboard
	Log        *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	store      *trips.Store
	auth       *auth.Service
	cfg        config.Config
	configPath string
	log        *slog.Logger

	screen   screen
	showHelp bool
	width    int
	height   int
	cursor   int
	notice   string

	tripForm  *huh.Form
	tripInput *form.TripInput

	setupForm *huh.Form
	setupVals *SetupValues

	spinner   spinner.Model
	pending   model.TripRequest
	startedAt time.Time
	now       time.Time
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	theme.SetActive(opts.Config.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	a := App{
		store:      opts.Store,
		auth:       opts.Auth,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		log:        log,
		spinner:    sp,
	}
	if opts.FirstRun {
		vals := SetupValuesFrom(opts.Config)
		a.setupVals = &vals
		a.setupForm = NewSetupForm(a.setupVals)
		a.screen = screenSetup
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.screen == screenSetup && a.setupForm != nil {
		return a.setupForm.Init()
	}
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.tripForm != nil {
			a.tripForm = a.tripForm.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height - 4)
		}
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height - 4)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.screen == screenSetup || a.screen == screenNewTrip || a.screen == screenProcessing {
			return a, nil
		}
		return a.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case screenSetup:
			return a.updateSetupForm(msg)
		case screenNewTrip:
			return a.updateTripForm(msg)
		case screenProcessing:
			return a, nil
		}
		return a.handleKey(msg.String())

	case spinner.TickMsg:
		if a.screen != screenProcessing {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case processingTickMsg:
		if a.screen != screenProcessing {
			return a, nil
		}
		a.now = time.Time(msg)
		return a, processingTickCmd()

	case planReadyMsg:
		if a.screen != screenProcessing {
			return a, nil
		}
		plan := a.store.Create(a.pending)
		a.log.Info("trip created",
			"trip_id", plan.ID,
			"destination", plan.Destination,
			"total", plan.TotalEstimated,
			"sufficient", plan.IsSufficient,
		)
		a.cursor = a.store.Len() - 1
		a.screen = screenResults
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.) to an active form.
	switch a.screen {
	case screenSetup:
		return a.updateSetupForm(msg)
	case screenNewTrip:
		return a.updateTripForm(msg)
	}
	return a, nil
}

func (a App) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}
	a.notice = ""

	if key == "q" {
		return a, tea.Quit
	}
	if len(key) == 1 {
		switch components.TabIdxByKey(rune(key[0])) {
		case components.TabDashboard:
			return a.backToDashboard()
		case components.TabNewTrip:
			return a.startNewTrip()
		}
	}

	switch a.screen {
	case screenDashboard:
		n := a.store.Len()
		switch key {
		case "j", "down":
			if a.cursor < n-1 {
				a.cursor++
			}
		case "k", "up":
			if a.cursor > 0 {
				a.cursor--
			}
		case "g":
			a.cursor = 0
		case "G":
			a.cursor = max(0, n-1)
		case "enter", "r":
			list := a.store.List()
			if a.cursor >= 0 && a.cursor < len(list) {
				a.store.Select(list[a.cursor].ID)
				a.screen = screenResults
			}
		}

	case screenResults:
		switch key {
		case "esc", "backspace":
			return a.backToDashboard()
		}
	}
	return a, nil
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.screen == screenDashboard && a.cursor > 0 {
			a.cursor--
		}
	case tea.MouseButtonWheelDown:
		if a.screen == screenDashboard && a.cursor < a.store.Len()-1 {
			a.cursor++
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionRelease || msg.Y != 0 {
			return a, nil
		}
		switch a.tabAtX(msg.X) {
		case components.TabDashboard:
			return a.backToDashboard()
		case components.TabNewTrip:
			return a.startNewTrip()
		case components.TabResults:
			return a.handleKey("r")
		}
	}
	return a, nil
}

// activeTab maps the current screen to its header tab.
func (a App) activeTab() int {
	switch a.screen {
	case screenNewTrip, screenProcessing:
		return components.TabNewTrip
	case screenResults:
		return components.TabResults
	default:
		return components.TabDashboard
	}
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := components.TabBarOffset()
	active := a.activeTab()
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == active)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + components.TabSeparatorWidth()
	}
	return -1
}

func (a App) backToDashboard() (tea.Model, tea.Cmd) {
	a.store.ClearCurrent()
	a.screen = screenDashboard
	return a, nil
}

func (a App) startNewTrip() (tea.Model, tea.Cmd) {
	in := &form.TripInput{}
	if m, ok := model.ParseMonth(a.cfg.General.DefaultMonth); ok {
		in.Month = m.String()
	}
	a.tripInput = in
	a.tripForm = NewTripForm(in)
	if a.width > 0 {
		a.tripForm = a.tripForm.WithWidth(min(a.width, 72)).WithHeight(a.height - 4)
	}
	a.screen = screenNewTrip
	return a, a.tripForm.Init()
}

func (a App) updateTripForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.tripForm = nil
		a.screen = screenDashboard
		return a, nil
	}

	f, cmd := a.tripForm.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		a.tripForm = hf
	}

	switch a.tripForm.State {
	case huh.StateCompleted:
		req, errs := form.ParseTrip(*a.tripInput)
		a.tripForm = nil
		if !errs.Empty() {
			a.notice = errs.Error()
			a.screen = screenDashboard
			return a, nil
		}
		return a.startProcessing(req)
	case huh.StateAborted:
		a.tripForm = nil
		a.screen = screenDashboard
		return a, nil
	}
	return a, cmd
}

func (a App) startProcessing(req model.TripRequest) (tea.Model, tea.Cmd) {
	a.pending = req
	a.screen = screenProcessing
	a.startedAt = time.Now()
	a.now = a.startedAt
	return a, tea.Batch(a.spinner.Tick, processingTickCmd(), analyzeCmd(a.cfg.ProcessingDelay()))
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f, cmd := a.setupForm.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		a.setupForm = hf
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.Apply(&a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		if a.configPath != "" {
			if err := config.SaveTo(a.configPath, a.cfg); err != nil {
				a.log.Warn("saving config", "error", err)
				a.notice = "Could not save config: " + err.Error()
			} else {
				a.notice = "Saved to " + a.configPath
			}
		}
		a.setupForm = nil
		a.screen = screenDashboard
		return a, nil
	case huh.StateAborted:
		a.setupForm = nil
		a.screen = screenDashboard
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	switch a.screen {
	case screenSetup:
		if a.setupForm != nil {
			return a.centered(a.setupForm.View())
		}
	case screenNewTrip:
		if a.tripForm != nil {
			return a.centered(a.tripForm.View())
		}
	case screenProcessing:
		return a.viewProcessing()
	}

	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  tripbudget needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) centered(body string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(theme.Active.Background))
}

func (a App) viewProcessing() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ TripBudget"))
	b.WriteString(subtitleStyle.Render(" · " + a.pending.Destination))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Analyzing your trip..."))
	b.WriteString("\n\n")

	delay := a.cfg.ProcessingDelay()
	if delay > 0 {
		pct := float64(a.now.Sub(a.startedAt)) / float64(delay)
		barW := min(40, max(20, a.width-30))
		b.WriteString(components.ProgressBar(pct, barW))
	}

	return a.centered(cardStyle.Render(b.String()))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Trips", []struct{ key, desc string }{
			{"n", "Plan a new trip"},
			{"j k", "Move through trips"},
			{"g G", "First / last trip"},
			{"Enter", "Open trip results"},
			{"r", "Results of current trip"},
		}},
		{"General", []struct{ key, desc string }{
			{"Esc d", "Back to dashboard"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return a.centered(cardStyle.Render(b.String()))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab(), w)

	hints := "[n]ew trip  [j/k]move  [enter]open  [?]help  [q]uit"
	if a.screen == screenResults {
		hints = "[esc]back  [n]ew trip  [?]help  [q]uit"
	}
	statusBar := components.RenderStatusBar(w, hints, a.statusRight())

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := max(h-headerH-statusH, minContentHeight)

	var content string
	if a.screen == screenResults {
		if plan, ok := a.store.Current(); ok {
			content = a.renderResults(plan, cw)
		} else {
			content = a.renderDashboard(cw)
		}
	} else {
		content = a.renderDashboard(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusRight() string {
	var parts []string
	if a.screen == screenResults {
		if plan, ok := a.store.Current(); ok && plan.Budget > 0 {
			parts = append(parts, components.CompactBar("budget", float64(plan.TotalEstimated)/plan.Budget, 24))
		}
	}
	if a.notice != "" {
		parts = append(parts, a.notice)
	}
	if u, ok := a.currentUser(); ok {
		parts = append(parts, u.Name)
	}
	n := a.store.Len()
	if n == 1 {
		parts = append(parts, "1 trip")
	} else {
		parts = append(parts, fmt.Sprintf("%d trips", n))
	}
	return strings.Join(parts, " · ")
}

func (a App) currentUser() (model.User, bool) {
	if a.auth == nil {
		return model.User{}, false
	}
	return a.auth.CurrentUser()
}

// Run starts the program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
