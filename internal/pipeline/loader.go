// Package pipeline loads batches of trip requests and plans them.
package pipeline

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/tripbudget/internal/source"
)

// LoadResult holds the output of the full loading pipeline.
type LoadResult struct {
	Entries         []source.Entry
	LineErrors      []source.LineError
	TotalFiles      int
	ParsedFiles     int
	ParseErrors     int
	FileErrors      int
	CollectionCount int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses all trip files under paths.
// It uses a bounded worker pool for parallel parsing; entries keep file
// order and line order. A file that stops partway keeps the entries read
// before the failure and adds a LineError for it.
func Load(paths []string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("scanning trip files: %w", err)
	}

	result := &LoadResult{
		TotalFiles:      len(files),
		CollectionCount: source.CountCollections(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	// Parallel parsing with bounded worker pool
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	for i, pr := range results {
		result.ParseErrors += pr.ParseErrors
		result.LineErrors = append(result.LineErrors, pr.LineErrors...)
		result.Entries = append(result.Entries, pr.Entries...)
		if pr.Err == nil {
			result.ParsedFiles++
			continue
		}

		result.FileErrors++
		var le source.LineError
		if !errors.As(pr.Err, &le) {
			le = source.LineError{File: files[i].Path, Err: pr.Err}
		}
		result.LineErrors = append(result.LineErrors, le)
	}

	return result, nil
}
