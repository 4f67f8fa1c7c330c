package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/tripbudget/internal/estimator"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/trips"
)

type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }

func writeFile(t *testing.T, root, rel string, lines ...string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "family/summer.jsonl",
		`{"destination":"Paris","budget":5000,"duration":7,"people":2,"month":"June"}`,
		`{"destination":"Rome","budget":100,"duration":3,"people":1,"month":"June"}`,
	)
	writeFile(t, root, "work/q3.jsonl",
		`{"destination":"Berlin","budget":2000,"duration":2,"people":1,"month":"September"}`,
		`{"destination":"","budget":-5,"duration":0,"people":1,"month":"Smarch"}`,
		`garbage`,
	)
	return root
}

func TestLoad(t *testing.T) {
	root := fixture(t)
	var calls atomic.Int64
	result, err := Load([]string{root}, func(current, total int) {
		calls.Add(1)
		if total != 2 {
			t.Errorf("progress total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.TotalFiles != 2 || result.ParsedFiles != 2 {
		t.Errorf("files = %d/%d, want 2/2", result.ParsedFiles, result.TotalFiles)
	}
	if result.CollectionCount != 2 {
		t.Errorf("CollectionCount = %d, want 2", result.CollectionCount)
	}
	if len(result.Entries) != 4 {
		t.Fatalf("Entries = %d, want 4", len(result.Entries))
	}
	if result.ParseErrors != 1 || len(result.LineErrors) != 1 {
		t.Errorf("ParseErrors = %d, LineErrors = %d, want 1/1", result.ParseErrors, len(result.LineErrors))
	}
	if calls.Load() != 2 {
		t.Errorf("progress calls = %d, want 2", calls.Load())
	}

	// File order then line order.
	want := []string{"Paris", "Rome", "Berlin", ""}
	for i, e := range result.Entries {
		if e.Input.Destination != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Input.Destination, want[i])
		}
	}
}

func TestLoad_MissingPath(t *testing.T) {
	if _, err := Load([]string{filepath.Join(t.TempDir(), "absent")}, nil); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestLoad_PartialFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "family/big.jsonl",
		`{"destination":"Oslo","budget":900,"duration":3,"people":1,"month":"May"}`,
		`{"destination":"Bergen","budget":900,"duration":2,"people":1,"month":"May"}`,
		`{"destination":"`+strings.Repeat("x", 2<<20)+`"}`,
	)

	result, err := Load([]string{root}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.FileErrors != 1 || result.ParsedFiles != 0 {
		t.Errorf("FileErrors = %d, ParsedFiles = %d, want 1/0", result.FileErrors, result.ParsedFiles)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(result.Entries))
	}
	if len(result.LineErrors) != 1 {
		t.Fatalf("LineErrors = %d, want 1", len(result.LineErrors))
	}
	le := result.LineErrors[0]
	if le.Line != 3 || !strings.HasSuffix(le.File, "big.jsonl") {
		t.Errorf("LineError = %q, want big.jsonl:3", le.Error())
	}
}

func TestPlanAndAggregate(t *testing.T) {
	result, err := Load([]string{fixture(t)}, nil)
	if err != nil {
		t.Fatal(err)
	}

	store := trips.NewStore(estimator.New(estimator.WithSource(zeroSource{})))
	outcomes := Plan(store, result.Entries)
	if len(outcomes) != 4 {
		t.Fatalf("outcomes = %d, want 4", len(outcomes))
	}
	if store.Len() != 3 {
		t.Errorf("store has %d plans, want 3", store.Len())
	}

	bad := outcomes[3]
	if bad.OK() {
		t.Fatal("invalid entry planned")
	}
	if got := len(bad.Errors.Fields()); got != 4 {
		t.Errorf("invalid entry fields = %v, want 4 errors", bad.Errors.Fields())
	}

	plans := Plans(outcomes)
	if len(plans) != 3 {
		t.Fatalf("Plans = %d, want 3", len(plans))
	}

	months := AggregateMonths(plans)
	if len(months) != 12 {
		t.Fatalf("months = %d, want 12", len(months))
	}
	june := months[int(time.June)-1]
	if june.Month != model.Month(time.June) || june.Trips != 2 || june.Budget != 5100 {
		t.Errorf("june = %+v", june)
	}
	if months[0].Trips != 0 {
		t.Errorf("january = %+v, want empty", months[0])
	}

	cols := AggregateCollections(outcomes)
	if len(cols) != 2 {
		t.Fatalf("collections = %d, want 2", len(cols))
	}
	if cols[0].TotalEstimated < cols[1].TotalEstimated {
		t.Errorf("collections not sorted by estimate: %+v", cols)
	}
	byName := map[string]model.CollectionStats{}
	for _, c := range cols {
		byName[c.Collection] = c
	}
	if w := byName["work"]; w.Trips != 1 || w.Invalid != 1 {
		t.Errorf("work = %+v", w)
	}
	if f := byName["family"]; f.Insufficient != 1 || f.Shortfall <= 0 {
		t.Errorf("family = %+v, want Rome short", f)
	}

	if got := FilterByCollection(outcomes, "FAM"); len(got) != 2 {
		t.Errorf("FilterByCollection(FAM) = %d, want 2", len(got))
	}
}
