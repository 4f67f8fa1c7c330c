// Package cmd implements the tripbudget CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/theirongolddev/tripbudget/internal/auth"
	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/kv"
	"github.com/theirongolddev/tripbudget/internal/logging"

	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagQuiet     bool
	flagLogLevel  string
	flagEphemeral bool
)

var rootCmd = &cobra.Command{
	Use:           "tripbudget",
	Short:         "Travel budget planner",
	Long:          "Estimate what a trip will cost, check it against your budget, and keep your plans in one place.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep the session in memory only")
}

// env is the shared runtime every command builds on.
type env struct {
	cfg     config.Config
	cfgPath string
	log     *slog.Logger
	session kv.Store
	auth    *auth.Service
}

func (e *env) Close() {
	if e.session != nil {
		_ = e.session.Close()
	}
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}

// loadConfig reads the config file, .env and TRIPBUDGET_* overrides.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg)
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagEphemeral {
		cfg.Session.Backend = config.BackendMemory
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s:\n%w", configPath(), err)
	}
	return cfg, nil
}

// newEnv loads config, builds the logger, opens the session store and
// restores the signed-in user. logTo receives log output.
func newEnv(ctx context.Context, logTo io.Writer) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if flagQuiet && flagLogLevel == "" {
		level = "error"
	}
	log := logging.New(logTo, level, cfg.Logging.Format)

	session, err := kv.Open(cfg.Session)
	if err != nil {
		// Session store unavailable, fall back to memory
		log.Warn("session store unavailable, using memory", "backend", cfg.Session.Backend, "error", err)
		session = kv.NewMemory()
	}

	svc := auth.New(session, auth.WithDelay(cfg.AuthDelay()), auth.WithLogger(log))
	if err := svc.Restore(ctx); err != nil {
		log.Warn("restoring session", "error", err)
	}

	return &env{
		cfg:     cfg,
		cfgPath: configPath(),
		log:     log,
		session: session,
		auth:    svc,
	}, nil
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
