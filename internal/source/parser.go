// Package source discovers and parses JSONL trip request files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"

	"github.com/theirongolddev/tripbudget/internal/form"
)

// ParseResult holds the output of parsing a single JSONL file. Err is a
// LineError when reading stopped; Entries still holds the lines before it.
type ParseResult struct {
	Entries     []Entry
	LineErrors  []LineError
	ParseErrors int
	Err         error
}

// ParseFile reads one trip request per line. Blank lines and lines starting
// with '#' are skipped. Lines that are not a JSON object are counted as
// parse errors; field validation is left to the caller.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: LineError{File: df.Path, Err: err}}
	}
	defer func() { _ = f.Close() }()

	var result ParseResult

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var raw form.RawTrip
		if err := json.Unmarshal(line, &raw); err != nil {
			result.ParseErrors++
			result.LineErrors = append(result.LineErrors, LineError{File: df.Path, Line: lineNo, Err: err})
			continue
		}

		result.Entries = append(result.Entries, Entry{
			File:       df.Path,
			Collection: df.Collection,
			Line:       lineNo,
			Input:      raw.Input(),
		})
	}
	if err := scanner.Err(); err != nil {
		result.Err = LineError{File: df.Path, Line: lineNo + 1, Err: err}
	}

	return result
}
