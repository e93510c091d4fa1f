// Package tui renders scan output for the terminal.
// Simple, streaming, no complex TUI - just clean prompts and output.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/charflow/charflow/pkg/scan"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// PrintDetection prints a single file verdict.
func PrintDetection(path, label string, size int64) {
	fmt.Printf("  %s  %s %s\n",
		titleStyle.Render(label),
		path,
		mutedStyle.Render("("+formatBytes(size)+")"))
}

// PrintReport prints the scan summary after a run.
func PrintReport(report *scan.Report) {
	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ SCAN COMPLETE"))
	fmt.Println()
	fmt.Printf("  %s %d\n", mutedStyle.Render("Files:"), len(report.Results))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Time:"), titleStyle.Render(formatDuration(report.Duration())))
	fmt.Println()

	counts := report.Counts()
	for _, label := range report.Labels() {
		fmt.Printf("  %s %d\n", mutedStyle.Render(label+":"), counts[label])
	}
	if n := counts["error"]; n > 0 {
		fmt.Printf("  %s %d\n", accentStyle.Render("error:"), n)
	}
	fmt.Println()
}

// PrintError prints a failure line.
func PrintError(path string, err error) {
	fmt.Printf("  %s  %s %s\n", accentStyle.Render("✗"), path, mutedStyle.Render(err.Error()))
}

// ShowProgress creates a progress bar for a scan run.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// formatBytes formats a byte count in a human-readable way.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
