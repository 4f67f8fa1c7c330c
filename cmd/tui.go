package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/estimator"
	"github.com/theirongolddev/tripbudget/internal/trips"
	"github.com/theirongolddev/tripbudget/internal/tui"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive trip planner",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func tuiLogPath() string {
	return filepath.Join(config.DataDir(), "tui.log")
}

// openTUILog returns a writer for log output that cannot share the terminal
// with the alt screen.
func openTUILog() (io.WriteCloser, error) {
	if err := os.MkdirAll(config.DataDir(), 0o750); err != nil {
		return nil, err
	}
	//nolint:gosec // log path is under the user's data directory
	return os.OpenFile(tuiLogPath(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	var logTo io.Writer = io.Discard
	if f, err := openTUILog(); err == nil {
		defer func() { _ = f.Close() }()
		logTo = f
	}

	e, err := newEnv(cmd.Context(), logTo)
	if err != nil {
		return err
	}
	defer e.Close()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	est := estimator.FromConfig(e.cfg)
	err = tui.Run(cmd.Context(), tui.Options{
		Store:      trips.NewStore(est),
		Auth:       e.auth,
		Config:     e.cfg,
		ConfigPath: e.cfgPath,
		FirstRun:   !config.Exists(e.cfgPath),
		Log:        e.log,
	})
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
