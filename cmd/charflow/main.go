// charflow - Text encoding detection for file collections
// Classifies files as UTF variants, legacy charsets, or binary.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/charflow/charflow/pkg/config"
	"github.com/charflow/charflow/pkg/detect"
	"github.com/charflow/charflow/pkg/sources"
	"github.com/charflow/charflow/pkg/telemetry"
	"github.com/charflow/charflow/pkg/transcode"
	"github.com/charflow/charflow/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	verbose bool
	minimal bool

	// Detect flags
	decodePreview bool

	// S3 flags
	s3Region   string
	s3Endpoint string

	// Scan flags
	workersFlag    int
	exportFlag     string
	outputFlag     string
	checkpointFlag string
	resetFlag      bool
	noProgress     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "charflow",
	Short: "charflow - Detect text encodings at scale",
	Long: `charflow classifies files by character encoding: UTF-8, UTF-16/32
variants, legacy charsets via statistical analysis, or binary.

Examples:
  charflow detect subtitles.srt
  charflow detect s3://bucket/key.srt
  cat data.txt | charflow detect -
  charflow scan './media/**/*.srt' --export csv -o report.csv
  charflow watch ./incoming`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var detectCmd = &cobra.Command{
	Use:   "detect <path>",
	Short: "Detect the encoding of a single file",
	Long: `Detect the character encoding of one file and print its label.

The path may be a local file, an s3:// URL, or "-" for stdin.

Examples:
  charflow detect subtitles.srt
  charflow detect --decode legacy.txt
  charflow detect s3://archive/episode-12.srt --s3-region eu-west-1`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&minimal, "minimal", false, "Disable the statistical fallback (first-window heuristic only)")

	// Detect command flags
	detectCmd.Flags().BoolVar(&decodePreview, "decode", false, "Print the file decoded to UTF-8 on stdout")
	detectCmd.Flags().StringVar(&s3Region, "s3-region", "", "AWS region for s3:// paths")
	detectCmd.Flags().StringVar(&s3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (MinIO, LocalStack)")

	// Scan command flags
	scanCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Parallel detection workers (0 = number of CPUs)")
	scanCmd.Flags().StringVar(&exportFlag, "export", "", "Export report format (csv, xlsx, parquet)")
	scanCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Export report path")
	scanCmd.Flags().StringVar(&checkpointFlag, "checkpoint", "", "Checkpoint backend (file, redis, none)")
	scanCmd.Flags().BoolVar(&resetFlag, "reset-checkpoint", false, "Drop checkpoint state before scanning")
	scanCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	// Add commands
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// newDetector builds the detector selected by the --minimal flag.
func newDetector() *detect.Detector {
	if minimal {
		return detect.NewMinimal()
	}
	return detect.New()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// initTelemetry starts OTLP export when enabled in config. The returned
// function flushes and shuts the exporter down; it is a no-op when
// telemetry is off.
func initTelemetry(ctx context.Context) func() {
	cfg := config.Global().Get().Telemetry
	if !cfg.Enabled {
		return func() {}
	}

	otlpCfg := telemetry.DefaultOTLPConfig("charflow")
	otlpCfg.ServiceVersion = version
	if cfg.Endpoint != "" {
		otlpCfg.Endpoint = cfg.Endpoint
	}

	shutdown, err := telemetry.Init(ctx, otlpCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		return func() {}
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdown(shutdownCtx)
	}
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	path := args[0]
	src, closeSrc, err := openSource(ctx, path)
	if err != nil {
		return err
	}
	defer closeSrc()

	label, err := newDetector().Detect(src)
	if err != nil {
		return err
	}

	if decodePreview {
		return decodeToStdout(path, label, src)
	}

	tui.PrintDetection(path, label, src.Size())
	return nil
}

// openSource resolves a CLI path argument to a detect.Source. stdin is
// slurped into memory because detection needs random access.
func openSource(ctx context.Context, path string) (detect.Source, func(), error) {
	noop := func() {}

	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, noop, fmt.Errorf("read stdin: %w", err)
		}
		return sources.NewMemorySource("stdin", data), noop, nil
	}

	if bucket, key, err := sources.ParseS3URL(path); err == nil {
		cfg := config.Global().Get().S3
		s3Cfg := sources.DefaultS3Config(cfg.Region)
		s3Cfg.Endpoint = cfg.Endpoint
		s3Cfg.UsePathStyle = cfg.PathStyle
		s3Cfg.AccessKeyID = cfg.AccessKey
		s3Cfg.SecretAccessKey = cfg.SecretKey
		if s3Region != "" {
			s3Cfg.Region = s3Region
		}
		if s3Endpoint != "" {
			s3Cfg.Endpoint = s3Endpoint
			s3Cfg.UsePathStyle = true
		}

		client, err := sources.NewS3Client(ctx, s3Cfg)
		if err != nil {
			return nil, noop, err
		}
		src, err := sources.NewS3Source(ctx, client, bucket, key, s3Cfg.OperationTimeout)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	}

	src, err := sources.NewFileSource(path)
	if err != nil {
		return nil, noop, err
	}
	return src, func() { src.Close() }, nil
}

// decodeToStdout re-reads src through a decoder for label and copies the
// UTF-8 output to stdout.
func decodeToStdout(path, label string, src detect.Source) error {
	reader, err := transcode.Reader(label, io.NewSectionReader(src, 0, src.Size()))
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if _, err := io.Copy(os.Stdout, reader); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
