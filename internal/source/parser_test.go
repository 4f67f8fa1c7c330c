package source

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTrips creates a temp JSONL file and returns a DiscoveredFile for it.
func writeTrips(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "family")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "summer.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return discovered(path)
}

func TestParseFile_Entries(t *testing.T) {
	df := writeTrips(t,
		`{"destination":"Paris","budget":5000,"duration":7,"people":2,"month":"June"}`,
		``,
		`# weekend trips`,
		`{"destination":"Rome","budget":"1200.50","duration":"3","people":"1","month":"may"}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(result.Entries))
	}

	paris := result.Entries[0]
	if paris.Line != 1 || paris.Input.Budget != "5000" || paris.Input.Duration != "7" {
		t.Errorf("paris = %+v", paris)
	}
	if paris.Collection != "family" {
		t.Errorf("Collection = %q, want family", paris.Collection)
	}

	rome := result.Entries[1]
	if rome.Line != 4 || rome.Input.Budget != "1200.50" || rome.Input.Month != "may" {
		t.Errorf("rome = %+v", rome)
	}
}

func TestParseFile_MalformedLines(t *testing.T) {
	df := writeTrips(t,
		`{"destination":"Oslo","budget":900,"duration":2,"people":1,"month":"March"}`,
		`not json`,
		`{"destination":"Lima","budget":[1]}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Entries) != 1 {
		t.Errorf("Entries = %d, want 1", len(result.Entries))
	}
	if result.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", result.ParseErrors)
	}
	if got := result.LineErrors[0].Line; got != 2 {
		t.Errorf("first bad line = %d, want 2", got)
	}
	if !strings.Contains(result.LineErrors[0].Error(), "summer.jsonl:2:") {
		t.Errorf("LineError = %q, want file:line prefix", result.LineErrors[0].Error())
	}
}

func TestParseFile_Missing(t *testing.T) {
	result := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.jsonl")})
	if result.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseFile_OversizedLineKeepsEarlierEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.jsonl")
	content := `{"destination":"Oslo","budget":900,"duration":3,"people":1,"month":"May"}` + "\n" +
		`{"destination":"Bergen","budget":900,"duration":2,"people":1,"month":"May"}` + "\n" +
		`{"destination":"` + strings.Repeat("x", 2<<20) + `"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	result := ParseFile(DiscoveredFile{Path: path, Collection: "nordics"})
	if len(result.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(result.Entries))
	}
	var le LineError
	if !errors.As(result.Err, &le) {
		t.Fatalf("Err = %v, want LineError", result.Err)
	}
	if le.Line != 3 || !errors.Is(result.Err, bufio.ErrTooLong) {
		t.Errorf("Err = %q, want line 3 with bufio.ErrTooLong", result.Err.Error())
	}
}

func TestLineError_WholeFile(t *testing.T) {
	le := LineError{File: "trips.jsonl", Err: os.ErrNotExist}
	if got, want := le.Error(), "trips.jsonl: "+os.ErrNotExist.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestScanPaths(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"family/summer.jsonl", "work/q3.jsonl", "work/notes.txt"} {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(root, "work", "notes.txt")

	files, err := ScanPaths([]string{root, explicit, filepath.Join(root, "work", "q3.jsonl")})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %d, want 3: %+v", len(files), files)
	}
	if CountCollections(files) != 2 {
		t.Errorf("CountCollections = %d, want 2", CountCollections(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Path > files[i].Path {
			t.Errorf("files not sorted: %q > %q", files[i-1].Path, files[i].Path)
		}
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil || files != nil {
		t.Fatalf("ScanDir(absent) = %v, %v; want nil, nil", files, err)
	}
}
