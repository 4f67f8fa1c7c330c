package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// serverRecord is written next to the pid file while the API server runs.
type serverRecord struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Config    string    `json:"config"`
}

// serverFiles owns the pid file and its JSON sidecar.
type serverFiles struct {
	pidPath string
	alive   func(pid int) bool
}

func newServerFiles(pidPath string) serverFiles {
	return serverFiles{pidPath: pidPath, alive: processAlive}
}

func (f serverFiles) recordPath() string { return f.pidPath + ".json" }

// pid returns the recorded process id. os.ErrNotExist means no server.
func (f serverFiles) pid() (int, error) {
	data, err := os.ReadFile(f.pidPath) //nolint:gosec // pid path is configured by the local user
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", f.pidPath)
	}
	return pid, nil
}

// running reports the live server pid, clearing files left by a dead one.
func (f serverFiles) running() (int, bool, error) {
	pid, err := f.pid()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	case f.alive(pid):
		return pid, true, nil
	}
	f.release()
	return pid, false, nil
}

// claim fails when another server is alive, otherwise writes rec.
func (f serverFiles) claim(rec serverRecord) error {
	if pid, ok, err := f.running(); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("API server already running (pid %d)", pid)
	}

	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	if err := os.WriteFile(f.pidPath, []byte(strconv.Itoa(rec.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.recordPath(), append(data, '\n'), 0o600)
}

func (f serverFiles) record() (serverRecord, error) {
	var rec serverRecord
	data, err := os.ReadFile(f.recordPath()) //nolint:gosec // path derives from the pid file
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(data, &rec)
	return rec, err
}

func (f serverFiles) release() {
	_ = os.Remove(f.pidPath)
	_ = os.Remove(f.recordPath())
}

// stop sends SIGTERM and waits up to timeout for the process to exit.
func (f serverFiles) stop(timeout time.Duration) (int, error) {
	pid, ok, err := f.running()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New("API server is not running")
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal server process: %w", err)
	}

	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(150 * time.Millisecond) {
		if !f.alive(pid) {
			f.release()
			return pid, nil
		}
	}
	return pid, fmt.Errorf("API server (pid %d) did not exit in time", pid)
}

func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// childArgs rewrites the current invocation for the detached child.
func childArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return append(out, "--child")
}
