package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/RyanBlaney/sample-analyzer/internal/app"
	"github.com/RyanBlaney/sample-analyzer/internal/library"
)

var (
	scanWorkers  int
	scanWaveform bool
	scanFast     bool
	scanSummary  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Analyze every audio file below a folder",
	Long: `Walk a sample library and analyze each audio file on a pool of workers.
Files whose cached record is still current are not decoded again. Files that
fail to decode are reported and the scan carries on.

Examples:
  sample-analyzer scan ~/Samples
  sample-analyzer scan --workers 4 --summary -o json ~/Samples/Drums`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0,
		"parallel workers (default from config, one per CPU)")
	scanCmd.Flags().BoolVar(&scanWaveform, "waveform", false,
		"include waveform peaks and colors in structured output")
	scanCmd.Flags().BoolVar(&scanFast, "fast", false,
		"skip audio tempo detection and use fewer columns")
	scanCmd.Flags().BoolVar(&scanSummary, "summary", false,
		"only print scan statistics")
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid folder %s: %w", args[0], err)
	}

	application, err := newApp(cmd, func(c *app.Context) {
		c.Workers = scanWorkers
		c.Fast = scanFast
	})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printHeader("Scanning", root)

	files, err := application.CollectFiles(root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", root, err)
	}
	if len(files) == 0 {
		printWarning("No audio files found")
		return nil
	}
	printInfo("%d audio files, %d workers", len(files), application.Config().Library.Workers)

	cache, err := application.Cache()
	if err != nil {
		printWarning("Cache unavailable, analyzing everything: %v", err)
		cache = nil
	}

	var (
		progress *mpb.Progress
		bar      *mpb.Bar
		onFile   library.ProgressFunc
	)
	if !quiet && application.Config().Display.Progress {
		progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
		bar = progress.AddBar(int64(len(files)),
			mpb.PrependDecorators(
				decor.Name("Analyzing: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.AverageETA(decor.ET_STYLE_GO),
			),
		)
		onFile = func(library.Progress) {
			bar.Increment()
		}
	}

	result, scanErr := application.Scanner(cache).Scan(ctx, root, files, onFile)
	if progress != nil {
		if scanErr != nil {
			bar.Abort(false)
		}
		progress.Wait()
	}
	if scanErr != nil && !errors.Is(scanErr, context.Canceled) {
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	printScanSummary(result)

	if scanSummary {
		if isStructuredOutput(application.Config().OutputFormat) {
			return application.Write(result.Stats)
		}
		return nil
	}

	if isStructuredOutput(application.Config().OutputFormat) {
		if !scanWaveform && !application.Config().Display.IncludeWaves {
			result.Analyses = stripWaveforms(result.Analyses)
		}
		if err := application.Write(result); err != nil {
			return err
		}
	} else if err := application.Write(app.AnalysisRows(result.Analyses)); err != nil {
		return err
	}

	if scanErr != nil {
		return fmt.Errorf("scan interrupted after %d of %d files: %w",
			len(result.Analyses)+len(result.Errors), len(files), scanErr)
	}
	return nil
}

func printScanSummary(result *library.ScanResult) {
	stats := result.Stats
	printSectionHeader("Summary")
	printSuccess("%d analyzed, %d from cache in %s", stats.Analyzed, stats.CacheHits, stats.Elapsed.Round(time.Millisecond))
	if stats.AnalysisTime.Count > 0 {
		printInfo("Per file: mean %.0fms, p95 %.0fms, max %.0fms",
			stats.AnalysisTime.Mean, stats.AnalysisTime.P95, stats.AnalysisTime.Max)
	}
	if len(stats.ByType) > 0 {
		printInfo("Types: %d loops, %d one-shots", stats.ByType["loop"], stats.ByType["oneshot"])
	}
	if stats.Failed > 0 {
		printWarning("%d files failed", stats.Failed)
		categories := make([]string, 0, len(stats.ErrorDistribution))
		for c := range stats.ErrorDistribution {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			printInfo("%s: %d", c, stats.ErrorDistribution[c])
		}
		for _, fe := range result.Errors {
			printError("%s", fe.Error())
		}
	}
}
