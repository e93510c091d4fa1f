// Package scan runs charset detection across many files concurrently and
// collects the verdicts into a report.
package scan

import (
	"sort"
	"time"
)

// Result is the outcome of detecting one file.
type Result struct {
	Path     string
	Label    string
	Size     int64
	Duration time.Duration

	// Skipped is set when an unchanged file was served from a checkpoint.
	Skipped bool

	// Err is the read failure for this file, if any. A failed file has
	// no label.
	Err error
}

// Report aggregates one scan run.
type Report struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Counts returns how many files received each label. Failed files are
// bucketed under "error".
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, res := range r.Results {
		switch {
		case res.Err != nil:
			counts["error"]++
		default:
			counts[res.Label]++
		}
	}
	return counts
}

// Labels returns the distinct labels seen, sorted, errors excluded.
func (r *Report) Labels() []string {
	set := make(map[string]struct{})
	for _, res := range r.Results {
		if res.Err == nil {
			set[res.Label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Duration returns the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
