package source

import (
	"strconv"

	"github.com/theirongolddev/tripbudget/internal/form"
)

// DiscoveredFile represents a JSONL trip file found during scanning.
type DiscoveredFile struct {
	Path       string
	Collection string // parent directory name (e.g., "family")
}

// Entry is one trip request read from a file.
type Entry struct {
	File       string
	Collection string
	Line       int
	Input      form.TripInput
}

// LineError records a line that could not be decoded. Line is zero when the
// file as a whole could not be read.
type LineError struct {
	File string
	Line int
	Err  error
}

func (e LineError) Error() string {
	if e.Line == 0 {
		return e.File + ": " + e.Err.Error()
	}
	return e.File + ":" + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e LineError) Unwrap() error { return e.Err }
