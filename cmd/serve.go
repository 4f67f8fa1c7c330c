package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/tripbudget/internal/cli"
	"github.com/theirongolddev/tripbudget/internal/config"
	"github.com/theirongolddev/tripbudget/internal/estimator"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/server"
	"github.com/theirongolddev/tripbudget/internal/trips"

	"github.com/spf13/cobra"
)

var (
	flagServeAddr         string
	flagServeDetach       bool
	flagServePIDFile      string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the trip planner HTTP API with an SSE event stream",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show API server process and trip status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running API server",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "tripbudgetd.pid")
	defaultLog := filepath.Join(config.DataDir(), "tripbudgetd.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")
	serveCmd.PersistentFlags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid server launch mode")
	}

	if flagServeDetach {
		return startServerDetached()
	}

	return runServerForeground(cmd.Context())
}

func startServerDetached() error {
	files := newServerFiles(flagServePIDFile)
	if pid, ok, err := files.running(); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("API server already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}
	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // re-executes the current binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started API server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServerForeground(parent context.Context) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	e, err := newEnv(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	scfg := server.ConfigFrom(e.cfg)
	if flagServeAddr != "" {
		scfg.Addr = flagServeAddr
	}
	if flagServeEventsBuffer > 0 {
		scfg.EventsBuffer = flagServeEventsBuffer
	}

	files := newServerFiles(flagServePIDFile)
	err = files.claim(serverRecord{
		PID:       os.Getpid(),
		Addr:      scfg.Addr,
		StartedAt: time.Now(),
		Config:    e.cfgPath,
	})
	if err != nil {
		return err
	}
	defer files.release()

	store := trips.NewStore(estimator.FromConfig(e.cfg))
	srv := server.New(scfg, store, e.auth, e.log)

	progressf("  tripbudget API listening on http://%s\n", scfg.Addr)
	progressf("  Events: http://%s/v1/stream\n", scfg.Addr)
	progressf("  Stop with: tripbudget serve stop --pid-file %s\n", flagServePIDFile)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type summaryProbe struct {
	Name     string               `json:"name"`
	Greeting string               `json:"greeting"`
	Stats    model.DashboardStats `json:"stats"`
}

func runServeStatus(cmd *cobra.Command, _ []string) error {
	files := newServerFiles(flagServePIDFile)
	pid, ok, err := files.running()
	switch {
	case err != nil:
		return err
	case pid == 0:
		fmt.Println("  API server: not running")
		return nil
	case !ok:
		fmt.Printf("  API server: removed stale pid file (pid %d)\n", pid)
		return nil
	}

	addr := flagServeAddr
	if rec, err := files.record(); err == nil && addr == "" {
		addr = rec.Addr
		fmt.Printf("  Running since: %s\n", rec.StartedAt.Local().Format(time.DateTime))
	}
	if addr == "" {
		addr = config.DefaultConfig().Server.Addr
	}
	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	sum, err := fetchSummary(cmd.Context(), addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	fmt.Println("  API status: ok")
	if sum.Name != "" {
		fmt.Printf("  Signed in: %s\n", sum.Name)
	}
	fmt.Printf("  Trips: %s\n", cli.FormatNumber(int64(sum.Stats.TotalTrips)))
	fmt.Printf("  Destinations: %s\n", cli.FormatNumber(int64(sum.Stats.Destinations)))
	fmt.Printf("  Budget saved: %s\n", cli.FormatUSD(sum.Stats.BudgetSaved))
	return nil
}

func fetchSummary(ctx context.Context, addr string) (summaryProbe, error) {
	var sum summaryProbe

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/summary", nil)
	if err != nil {
		return sum, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return sum, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return sum, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		return sum, fmt.Errorf("malformed response (%w)", err)
	}
	return sum, nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := newServerFiles(flagServePIDFile).stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped API server (pid %d)\n", pid)
	return nil
}
