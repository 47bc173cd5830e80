package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/sourcegraph/conc/pool"
)

// BatchFile is one statement of a batch import
type BatchFile struct {
	Name   string
	Reader io.Reader
}

// BatchResult pairs a file with its import outcome
type BatchResult struct {
	Filename string        `json:"filename"`
	Result   *ImportResult `json:"result,omitempty"`
	Err      error         `json:"-"`
}

// ImportBatch imports independent files concurrently on a bounded pool.
// Results come back in input order.
func (s *ImportService) ImportBatch(ctx context.Context, files []BatchFile, opts ImportOptions) []BatchResult {
	results := make([]BatchResult, len(files))
	p := pool.New().WithMaxGoroutines(s.limits.BatchWorkers)
	for i, f := range files {
		p.Go(func() {
			res, err := s.Import(ctx, f.Reader, f.Name, opts)
			if err != nil {
				s.logger.Warn("batch file failed", slog.String("filename", f.Name), slog.Any("error", err))
			}
			results[i] = BatchResult{Filename: f.Name, Result: res, Err: err}
		})
	}
	p.Wait()
	return results
}
