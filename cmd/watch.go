package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sample-analyzer/internal/library"
)

var (
	watchSettle  time.Duration
	watchInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Analyze audio files as they land in a folder",
	Long: `Follow a folder and its subfolders. New or rewritten audio files are
analyzed once they stop changing and stored in the cache; deleted files are
dropped from it. Runs until interrupted.

Examples:
  sample-analyzer watch ~/Downloads/Samples
  sample-analyzer watch --initial-scan --settle 2s ~/Samples`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchSettle, "settle", 0,
		"quiet period before a changed file is analyzed (default from config)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial-scan", false,
		"scan existing files before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid folder %s: %w", args[0], err)
	}

	application, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	if watchSettle > 0 {
		application.Config().Watch.SettleDelay = watchSettle
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := application.Cache()
	if err != nil {
		printWarning("Cache unavailable, results are only printed: %v", err)
		cache = nil
	}

	printHeader("Watching", root)

	if watchInitial {
		files, err := application.CollectFiles(root)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", root, err)
		}
		result, err := application.Scanner(cache).Scan(ctx, root, files, nil)
		if err != nil {
			return err
		}
		printSuccess("Initial scan: %d analyzed, %d from cache, %d failed",
			result.Stats.Analyzed, result.CacheHits, result.Stats.Failed)
	}

	events, err := application.Watcher(cache).Watch(ctx, root)
	if err != nil {
		return err
	}
	printInfo("Waiting for files, Ctrl-C to stop")

	for ev := range events {
		printWatchEvent(root, ev)
	}
	return nil
}

func printWatchEvent(root string, ev library.WatchEvent) {
	name := ev.Path
	if rel, err := filepath.Rel(root, ev.Path); err == nil {
		name = rel
	}

	switch {
	case ev.Removed:
		printInfo("%s removed", name)
	case ev.Err != nil:
		printError("%s: %v", name, ev.Err)
	default:
		a := ev.Analysis
		bpm := "-"
		if a.BPM != nil {
			bpm = fmt.Sprintf("%d", *a.BPM)
		}
		key := "-"
		if a.Key != nil {
			key = *a.Key
		}
		printSuccess("%s  %s  %s bpm  %s  %.2fs", name, a.Type, bpm, key, a.Duration.Seconds())
	}
}
