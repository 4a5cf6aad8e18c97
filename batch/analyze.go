// SPDX-License-Identifier: EPL-2.0

package batch

import (
	"context"
	"sync"

	"github.com/ik5/msukit/analysis"
)

// AnalysisResult is the loudness of one file. Err wraps analysis.ErrNoData
// when nothing could be measured.
type AnalysisResult struct {
	Path   string
	Result analysis.Result
	Err    error
}

// Analyze measures every MSU1 file with at most workers running at once.
// Results keep the order of paths. Files not started before ctx is
// cancelled carry ctx's error.
func Analyze(ctx context.Context, paths []string, workers int) []AnalysisResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]AnalysisResult, len(paths))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, p := range paths {
		results[i].Path = p

		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx].Result, results[idx].Err = analysis.AnalyzeFile(path)
		}(i, p)
	}
	wg.Wait()

	return results
}
