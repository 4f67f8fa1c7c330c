package tui

import (
	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/form"
	"github.com/theirongolddev/tripbudget/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the first-run wizard.
type SetupValues struct {
	Theme          string
	DefaultMonth   string
	SessionBackend string
	SimulateDelay  bool
}

// SetupValuesFrom seeds the wizard with the current config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Theme:          cfg.Appearance.Theme,
		DefaultMonth:   cfg.General.DefaultMonth,
		SessionBackend: cfg.Session.Backend,
		SimulateDelay:  cfg.Planner.ProcessingDelayMs > 0 || cfg.Auth.DelayMs > 0,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	cfg.General.DefaultMonth = v.DefaultMonth
	if v.SessionBackend != "" {
		cfg.Session.Backend = v.SessionBackend
	}

	defaults := config.DefaultConfig()
	if v.SimulateDelay {
		if cfg.Planner.ProcessingDelayMs == 0 {
			cfg.Planner.ProcessingDelayMs = defaults.Planner.ProcessingDelayMs
		}
		if cfg.Auth.DelayMs == 0 {
			cfg.Auth.DelayMs = defaults.Auth.DelayMs
		}
	} else {
		cfg.Planner.ProcessingDelayMs = 0
		cfg.Auth.DelayMs = 0
	}
}

// NewSetupForm builds the first-run wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	months := append([]string{""}, form.Months()...)
	monthOpts := huh.NewOptions(months...)
	monthOpts[0] = huh.NewOption("No default", "")

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to TripBudget").
				Description("Plan a trip, get an instant cost estimate, and see whether your budget covers it."),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
			huh.NewSelect[string]().
				Title("Default travel month").
				Description("Pre-selected on the new trip form.").
				Options(monthOpts...).
				Value(&vals.DefaultMonth),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Remember sign-in with").
				Options(
					huh.NewOption("SQLite file (default)", config.BackendSQLite),
					huh.NewOption("Redis", config.BackendRedis),
					huh.NewOption("Nothing (forget on exit)", config.BackendMemory),
				).
				Value(&vals.SessionBackend),
			huh.NewConfirm().
				Title("Simulate network and analysis delays?").
				Affirmative("Yes").
				Negative("No").
				Value(&vals.SimulateDelay),
		),
	).WithTheme(huh.ThemeCharm())
}
