package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/charflow/charflow/pkg/checkpoint"
	"github.com/charflow/charflow/pkg/config"
	"github.com/charflow/charflow/pkg/export"
	"github.com/charflow/charflow/pkg/scan"
	"github.com/charflow/charflow/pkg/sources"
	"github.com/charflow/charflow/pkg/tui"
	"github.com/charflow/charflow/pkg/watch"
)

const shutdownTimeout = 5 * time.Second

var scanCmd = &cobra.Command{
	Use:   "scan <path|glob>...",
	Short: "Detect encodings for many files in parallel",
	Long: `Scan files, directories, or glob patterns and report each file's
encoding. Finished files are checkpointed so interrupted scans resume
without rescanning unchanged content.

Examples:
  charflow scan ./subtitles
  charflow scan '*.srt' '*.ass' --workers 8
  charflow scan ./media --export parquet -o report.parquet
  charflow scan ./media --checkpoint redis
  charflow scan ./media --reset-checkpoint`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>...",
	Short: "Re-detect files as they change",
	Long: `Watch files or directories and re-run detection whenever content
changes. Useful for ingest directories where files arrive or get
rewritten continuously.

Examples:
  charflow watch ./incoming
  charflow watch data.srt ./queue`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `Print the merged configuration and the files it was loaded from.`,
	RunE:  runConfig,
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	stopTelemetry := initTelemetry(ctx)
	defer stopTelemetry()

	paths, err := sources.Expand(args...)
	if err != nil {
		return err
	}

	cp, closeCp, err := buildCheckpoint(ctx)
	if err != nil {
		return err
	}
	defer closeCp()

	if resetFlag && cp != nil {
		if err := cp.Reset(ctx); err != nil {
			return fmt.Errorf("reset checkpoint: %w", err)
		}
	}

	workers := workersFlag
	if workers == 0 {
		workers = config.Global().Get().Scan.Workers
	}

	opts := scan.Options{
		Workers:    workers,
		Checkpoint: cp,
	}

	if !noProgress {
		bar := tui.ShowProgress(int64(len(paths)), "scanning")
		opts.OnResult = func(res scan.Result) {
			bar.Add(1)
			if verbose && res.Err != nil {
				tui.PrintError(res.Path, res.Err)
			}
		}
	} else if verbose {
		opts.OnResult = func(res scan.Result) {
			if res.Err != nil {
				tui.PrintError(res.Path, res.Err)
				return
			}
			tui.PrintDetection(res.Path, res.Label, res.Size)
		}
	}

	scanner := scan.New(newDetector(), opts)
	report, err := scanner.Run(ctx, paths)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	tui.PrintReport(report)

	if exportFlag != "" || outputFlag != "" {
		return exportReport(report)
	}
	return nil
}

// buildCheckpoint resolves the checkpoint backend from the --checkpoint
// flag, falling back to config. The second return value closes backend
// resources and is always safe to call.
func buildCheckpoint(ctx context.Context) (*checkpoint.Manager, func(), error) {
	noop := func() {}

	cfg := config.Global().Get().Checkpoint
	backendName := cfg.Backend
	if checkpointFlag != "" {
		backendName = checkpointFlag
	}

	switch backendName {
	case "none", "":
		return nil, noop, nil

	case "file":
		backend, err := checkpoint.NewFileBackend(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		mgr, err := checkpoint.NewManager(ctx, backend)
		return mgr, noop, err

	case "redis":
		redisCfg := checkpoint.DefaultRedisConfig(cfg.RedisAddr)
		redisCfg.Key = cfg.RedisKey
		redisCfg.TTL = cfg.TTL
		backend, err := checkpoint.NewRedisBackend(redisCfg)
		if err != nil {
			return nil, noop, err
		}
		mgr, err := checkpoint.NewManager(ctx, backend)
		if err != nil {
			backend.Close()
			return nil, noop, err
		}
		return mgr, func() { backend.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown checkpoint backend: %s", backendName)
	}
}

// exportReport writes the report to the path and format selected by flags.
func exportReport(report *scan.Report) error {
	formatName := exportFlag
	if formatName == "" {
		formatName = config.Global().Get().Export.Format
	}
	format := export.ParseFormat(formatName)
	if format == export.FormatUnknown {
		return fmt.Errorf("unknown export format: %s", formatName)
	}

	path := outputFlag
	if path == "" {
		path = "charflow-report." + format.String()
	}

	if err := export.Write(report, format, path); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	if verbose {
		fmt.Printf("report written to %s\n", path)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	detector := newDetector()
	watcher, err := watch.New(func(path string) (string, error) {
		src, err := sources.NewFileSource(path)
		if err != nil {
			return "", err
		}
		defer src.Close()
		return detector.Detect(src)
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	watcher.OnEvent = func(ev watch.Event) {
		if ev.Err != nil {
			tui.PrintError(ev.Path, ev.Err)
			return
		}
		fmt.Printf("  %s  %s\n", ev.Label, ev.Path)
	}

	for _, path := range args {
		if err := watcher.Add(path); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "watching %d path(s), Ctrl-C to stop\n", len(args))
	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	mgr := config.Global()

	data, err := yaml.Marshal(mgr.Get())
	if err != nil {
		return err
	}
	os.Stdout.Write(data)

	if paths := mgr.GetPaths(); len(paths) > 0 {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "loaded from:")
		for _, p := range paths {
			fmt.Fprintf(os.Stderr, "  %s\n", p)
		}
	}
	return nil
}
