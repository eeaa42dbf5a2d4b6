package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sample-analyzer/internal/app"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
)

var (
	analyzeRoot     string
	analyzeWaveform bool
	analyzePeaks    int
	analyzeFast     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Produce full analysis records for files",
	Long: `Analyze each file: waveform, tempo, key, genre, tags and loop/one-shot
type. Cached records are reused when the file has not changed.

Genre and tags are read from the path as given. Pass --root to name the
library folder so pack names above the file are taken into account.

Examples:
  sample-analyzer analyze "Lo-Fi Keys/Chords/keys_85bpm_Dmin.wav"
  sample-analyzer analyze --root ~/Samples --waveform -o json ~/Samples/Pack/*.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeRoot, "root", "",
		"library folder the files live under")
	analyzeCmd.Flags().BoolVar(&analyzeWaveform, "waveform", false,
		"include waveform peaks and colors in structured output")
	analyzeCmd.Flags().IntVarP(&analyzePeaks, "peaks", "n", 0,
		"number of waveform columns (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeFast, "fast", false,
		"skip audio tempo detection and use fewer columns")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	application, err := newApp(cmd, func(c *app.Context) {
		c.NumPeaks = analyzePeaks
		c.Fast = analyzeFast
	})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cache, err := application.Cache()
	if err != nil {
		printWarning("Cache unavailable: %v", err)
		cache = nil
	}

	logger := application.Logger().WithFields(logging.Fields{
		"function": "runAnalyze",
	})

	fingerprint := application.Analyzer().Options().Fingerprint()
	var analyses []*sample.Analysis
	failed := 0
	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return err
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}

		if cache != nil {
			if cached, ok, _ := cache.Get(abs, fingerprint); ok {
				logger.Debug("Using cached analysis", logging.Fields{"path": abs})
				analyses = append(analyses, cached)
				continue
			}
		}

		var analysis *sample.Analysis
		if analyzeRoot != "" {
			analysis, err = application.Analyzer().AnalyzeFile(ctx, analyzeRoot, abs)
		} else {
			analysis, err = application.Analyzer().Analyze(ctx, abs)
		}
		if err != nil {
			failed++
			printError("%s: %v", path, err)
			continue
		}

		if cache != nil {
			if err := cache.Put(analysis, fingerprint); err != nil {
				logger.Warn("Failed to cache analysis", logging.Fields{
					"path":  abs,
					"error": err.Error(),
				})
			}
		}
		analyses = append(analyses, analysis)
	}

	if err := writeAnalyses(application, analyses, analyzeWaveform); err != nil {
		return err
	}

	if failed == len(args) {
		return fmt.Errorf("none of the %d files could be analyzed", failed)
	}
	return nil
}

// writeAnalyses emits records in the configured format
func writeAnalyses(application *app.App, analyses []*sample.Analysis, withWaveform bool) error {
	format := application.Config().OutputFormat
	if !isStructuredOutput(format) {
		return application.Write(app.AnalysisRows(analyses))
	}
	if !withWaveform && !application.Config().Display.IncludeWaves {
		analyses = stripWaveforms(analyses)
	}
	return application.Write(analyses)
}
