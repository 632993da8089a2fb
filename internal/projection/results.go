package projection

import "time"

// FileStatus classifies the outcome of projecting one prediction file.
type FileStatus int

const (
	// FileProcessed means the output collection was written.
	FileProcessed FileStatus = iota
	// FileSkipped means the file was dropped (malformed input or missing
	// companion tile) and the batch moved on.
	FileSkipped
)

// FileResult records the outcome for one prediction file.
type FileResult struct {
	Path     string
	Status   FileStatus
	Features int
	Err      error // skip reason, nil when processed
}

// BatchResult aggregates the per-file outcomes of one worker batch. Err is
// set only when the batch itself failed wholesale; sibling batches are
// unaffected either way.
type BatchResult struct {
	Index int
	Files []FileResult
	Err   error
}

// RunResult is the aggregate outcome of a projection run. Runs always
// return a result rather than an error; partial or missing outputs paired
// with these records are the failure signal.
type RunResult struct {
	TotalFiles int
	Workers    int
	Duration   time.Duration
	Batches    []BatchResult
	Err        error // setup failure before any batch was dispatched
}

// RunStats summarizes a run for console reporting.
type RunStats struct {
	TotalFiles       int
	Processed        int
	Skipped          int
	FailedBatches    int
	Features         int
	Duration         time.Duration
	ThroughputPerSec float64
}

// Stats computes summary statistics over all batches.
func (r *RunResult) Stats() RunStats {
	st := RunStats{
		TotalFiles: r.TotalFiles,
		Duration:   r.Duration,
	}
	for _, b := range r.Batches {
		if b.Err != nil {
			st.FailedBatches++
		}
		for _, f := range b.Files {
			switch f.Status {
			case FileProcessed:
				st.Processed++
				st.Features += f.Features
			case FileSkipped:
				st.Skipped++
			}
		}
	}
	if st.Processed > 0 && r.Duration > 0 {
		st.ThroughputPerSec = float64(st.Processed) / r.Duration.Seconds()
	}
	return st
}
