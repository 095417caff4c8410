package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Entries      []model.LedgerEntry
	TotalFiles   int
	ParsedFiles  int
	RowErrors    int
	FileErrors   int
	ProjectCount int
	Errors       []error // file-level failures, for display
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every CSV export under root without touching a
// store. It uses a bounded worker pool for parallel parsing.
func Load(root string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &LoadResult{
		TotalFiles:   len(files),
		ProjectCount: source.CountProjects(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	for _, pr := range parseAll(files, 0, len(files), progressFn) {
		result.collect(pr)
	}
	return result, nil
}

func (r *LoadResult) collect(pr source.ParseResult) bool {
	if pr.Err != nil {
		r.FileErrors++
		r.Errors = append(r.Errors, fmt.Errorf("%s: %w", pr.File.Path, pr.Err))
		return false
	}
	r.ParsedFiles++
	r.RowErrors += len(pr.RowErrors)
	r.Entries = append(r.Entries, pr.Entries...)
	return true
}

// parseAll parses files on GOMAXPROCS workers. Results keep input order.
// offset and total only shape progress reports.
func parseAll(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
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
					progressFn(int(n)+offset, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}
