package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func testServerFiles(t *testing.T, alive bool) serverFiles {
	t.Helper()
	f := newServerFiles(filepath.Join(t.TempDir(), "run", "tripbudgetd.pid"))
	f.alive = func(int) bool { return alive }
	return f
}

func TestServerFiles_ClaimAndRelease(t *testing.T) {
	f := testServerFiles(t, true)
	started := time.Date(2026, time.May, 4, 9, 30, 0, 0, time.UTC)

	if err := f.claim(serverRecord{PID: 4242, Addr: "127.0.0.1:9000", StartedAt: started}); err != nil {
		t.Fatal(err)
	}

	pid, ok, err := f.running()
	if err != nil || !ok || pid != 4242 {
		t.Fatalf("running() = %d, %v, %v; want 4242, true, nil", pid, ok, err)
	}
	rec, err := f.record()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Addr != "127.0.0.1:9000" || !rec.StartedAt.Equal(started) {
		t.Errorf("record = %+v", rec)
	}

	err = f.claim(serverRecord{PID: 5000})
	if err == nil || !strings.Contains(err.Error(), "pid 4242") {
		t.Errorf("second claim error = %v, want already running", err)
	}

	f.release()
	if _, err := os.Stat(f.pidPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("pid file still present: %v", err)
	}
	if _, err := os.Stat(f.recordPath()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("record file still present: %v", err)
	}
}

func TestServerFiles_StalePIDIsCleared(t *testing.T) {
	f := testServerFiles(t, false)
	if err := f.claim(serverRecord{PID: 31337}); err != nil {
		t.Fatal(err)
	}

	pid, ok, err := f.running()
	if err != nil || ok || pid != 31337 {
		t.Fatalf("running() = %d, %v, %v; want 31337, false, nil", pid, ok, err)
	}
	if _, err := os.Stat(f.pidPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale pid file was not removed")
	}

	if err := f.claim(serverRecord{PID: 7}); err != nil {
		t.Errorf("claim after stale pid: %v", err)
	}
}

func TestServerFiles_NoServer(t *testing.T) {
	f := testServerFiles(t, true)

	pid, ok, err := f.running()
	if err != nil || ok || pid != 0 {
		t.Fatalf("running() = %d, %v, %v; want 0, false, nil", pid, ok, err)
	}
	if _, err := f.stop(time.Second); err == nil {
		t.Error("stop with no server should fail")
	}
}

func TestServerFiles_InvalidPID(t *testing.T) {
	f := testServerFiles(t, true)
	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.pidPath, []byte("not-a-pid\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.running(); err == nil {
		t.Error("expected error for malformed pid file")
	}
}

func TestChildArgs(t *testing.T) {
	got := childArgs([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"serve", "--addr", ":9000", "--child"}
	if !slices.Equal(got, want) {
		t.Errorf("childArgs = %v, want %v", got, want)
	}
}
