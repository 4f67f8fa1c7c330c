package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/model"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPath()
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DefaultMonth != "" {
		fmt.Printf("    Default month: %s\n", cfg.General.DefaultMonth)
	} else {
		fmt.Println("    Default month: not set")
	}
	fmt.Println()

	fmt.Println("  [Estimator]")
	if cfg.Estimator.Seed != 0 {
		fmt.Printf("    Seed: %d\n", cfg.Estimator.Seed)
	} else {
		fmt.Println("    Seed: random")
	}
	rates := cfg.Rates()
	for _, c := range model.Categories {
		r := rates[c]
		fmt.Printf("    %-14s $%.0f-$%.0f\n", c.Label()+":", r.Min, r.Max)
	}
	fmt.Println()

	fmt.Println("  [Session]")
	fmt.Printf("    Backend: %s\n", cfg.Session.Backend)
	switch cfg.Session.Backend {
	case config.BackendSQLite:
		fmt.Printf("    Path:    %s\n", cfg.SessionPath())
	case config.BackendRedis:
		fmt.Printf("    Redis:   %s (db %d)\n", cfg.Session.RedisAddr, cfg.Session.RedisDB)
	}
	fmt.Println()

	fmt.Println("  [Timing]")
	fmt.Printf("    Sign-in delay:    %s\n", cfg.AuthDelay())
	fmt.Printf("    Analysis delay:   %s\n", cfg.ProcessingDelay())
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:      %s\n", cfg.Server.Addr)
	fmt.Printf("    CORS origins: %s\n", strings.Join(cfg.Server.CORSOrigins, ", "))
	if cfg.Server.TokenSecret != "" {
		fmt.Printf("    Token secret: %s\n", maskSecret(cfg.Server.TokenSecret))
	} else {
		fmt.Println("    Token secret: generated per run")
	}
	fmt.Printf("    Token TTL:    %s\n", cfg.TokenTTL())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  Run `tripbudget setup` to reconfigure.")
	return nil
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
