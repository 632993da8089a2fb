// Package projection fans per-tile prediction files out across a bounded
// worker pool and writes one geo-referenced feature collection per file.
package projection

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 32

// Config holds everything a projection run needs.
type Config struct {
	TilesDir       string
	PredictionsDir string
	OutputDir      string
	MultiClass     bool

	// Workers bounds the parallel batch count; 1 forces the sequential
	// path.
	Workers int

	// Confidence, when set, drops instances scoring strictly below it.
	Confidence *float64

	// OverlapShift, when set, enables edge-crown suppression with the
	// given margin trimmed from each tile's extent.
	OverlapShift *float64

	// Simplify is an optional Douglas-Peucker tolerance for output rings.
	Simplify float64

	// OverlayDir, when non-empty, also writes a PNG overlay per tile.
	OverlayDir string

	Progress ProgressCallback
}

// Run projects every prediction file under cfg.PredictionsDir. It always
// returns a result: batch failures are recovered, logged, and recorded
// without aborting sibling batches, so every successfully processed file is
// persisted even when another fails.
func Run(cfg Config) *RunResult {
	start := time.Now()
	res := &RunResult{Workers: cfg.Workers}

	if cfg.Workers < 1 {
		cfg.Workers = 1
		res.Workers = 1
	}
	if cfg.Progress == nil {
		cfg.Progress = NoOpProgressCallback{}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		slog.Error("creating output directory failed", "dir", cfg.OutputDir, "error", err)
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	files, err := listPredictionFiles(cfg.PredictionsDir)
	if err != nil {
		slog.Error("enumerating prediction files failed", "dir", cfg.PredictionsDir, "error", err)
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	res.TotalFiles = len(files)
	if len(files) == 0 {
		res.Duration = time.Since(start)
		return res
	}

	cfg.Progress.OnStart(len(files))
	var done atomic.Int64
	tick := func() {
		cfg.Progress.OnProgress(int(done.Add(1)), len(files))
	}

	if cfg.Workers == 1 {
		res.Batches = append(res.Batches, runBatch(0, files, cfg, tick))
	} else {
		workers := min(cfg.Workers, len(files))
		res.Workers = workers
		res.Batches = dispatchBatches(partition(files, workers), cfg, tick)
	}

	cfg.Progress.OnComplete()
	res.Duration = time.Since(start)
	return res
}

// partition splits files round-robin into n batches: file i lands in batch
// i%n, preserving enumeration order within each batch. Balanced by count,
// not by file size.
func partition(files []string, n int) [][]string {
	batches := make([][]string, n)
	for i, f := range files {
		batches[i%n] = append(batches[i%n], f)
	}
	return batches
}

// dispatchBatches runs one goroutine per non-empty batch and collects their
// results, ordered by batch index.
func dispatchBatches(batches [][]string, cfg Config, tick func()) []BatchResult {
	results := make(chan BatchResult, len(batches))
	var wg sync.WaitGroup

	for i, batch := range batches {
		if len(batch) == 0 {
			continue
		}
		wg.Add(1)
		go func(index int, files []string) {
			defer wg.Done()
			results <- runBatch(index, files, cfg, tick)
		}(i, batch)
	}

	wg.Wait()
	close(results)

	collected := make([]BatchResult, 0, len(batches))
	for br := range results {
		collected = append(collected, br)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Index < collected[j].Index })
	return collected
}

// listPredictionFiles returns the paths of all prediction files directly
// under dir, in directory enumeration order.
func listPredictionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != PredictionExt {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
