package scan

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/charflow/charflow/pkg/checkpoint"
	"github.com/charflow/charflow/pkg/detect"
	"github.com/charflow/charflow/pkg/sources"
)

// Options configures a Scanner.
type Options struct {
	// Workers is the number of files detected in parallel.
	// 0 means runtime.NumCPU.
	Workers int

	// Checkpoint, when set, skips files already scanned with matching
	// size and mtime, and records fresh verdicts.
	Checkpoint *checkpoint.Manager

	// OnResult is invoked once per finished file, from worker
	// goroutines. Used for progress reporting.
	OnResult func(Result)
}

// Scanner drives one detector over many files.
type Scanner struct {
	detector *detect.Detector
	opts     Options
	tracer   trace.Tracer
}

// New creates a Scanner. The detector is shared across workers, which is
// safe because detection keeps no per-call state on it.
func New(detector *detect.Detector, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Scanner{
		detector: detector,
		opts:     opts,
		tracer:   otel.Tracer("charflow/scan"),
	}
}

// Run detects every path and returns the collected report. Per-file read
// failures are recorded in the report; only context cancellation aborts
// the run.
func (s *Scanner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]Result, len(paths)),
	}

	ctx, span := s.tracer.Start(ctx, "scan.run", trace.WithAttributes(
		attribute.String("scan.id", report.ID),
		attribute.Int("scan.files", len(paths)),
	))
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := s.scanFile(ctx, path)
			report.Results[i] = result
			if s.opts.OnResult != nil {
				s.opts.OnResult(result)
			}
			return nil
		})
	}

	err := g.Wait()
	report.FinishedAt = time.Now()
	if err != nil {
		return report, err
	}

	for label, n := range report.Counts() {
		span.SetAttributes(attribute.Int("scan.count."+label, n))
	}
	return report, nil
}

func (s *Scanner) scanFile(ctx context.Context, path string) Result {
	start := time.Now()

	_, span := s.tracer.Start(ctx, "scan.file", trace.WithAttributes(
		attribute.String("file.path", path),
	))
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		return Result{Path: path, Duration: time.Since(start), Err: err}
	}

	if cp := s.opts.Checkpoint; cp != nil {
		if entry, ok := cp.Lookup(path, info.Size(), info.ModTime()); ok {
			span.SetAttributes(attribute.Bool("file.checkpoint_hit", true))
			return Result{
				Path:     path,
				Label:    entry.Label,
				Size:     entry.Size,
				Duration: time.Since(start),
				Skipped:  true,
			}
		}
	}

	src, err := sources.NewFileSource(path)
	if err != nil {
		return Result{Path: path, Duration: time.Since(start), Err: err}
	}
	defer src.Close()

	label, err := s.detector.Detect(src)
	if err != nil {
		return Result{Path: path, Size: info.Size(), Duration: time.Since(start), Err: err}
	}
	span.SetAttributes(attribute.String("file.label", label))

	if cp := s.opts.Checkpoint; cp != nil {
		entry := checkpoint.Entry{
			Path:      path,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Label:     label,
			ScannedAt: time.Now(),
		}
		// A failed checkpoint write costs a rescan later, not the verdict.
		_ = cp.Record(ctx, entry)
	}

	return Result{
		Path:     path,
		Label:    label,
		Size:     info.Size(),
		Duration: time.Since(start),
	}
}
