package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sample-analyzer/internal/app"
	"github.com/RyanBlaney/sample-analyzer/internal/library"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the analysis cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(application *app.App, cache *library.Cache) error {
			stats, err := cache.Stats()
			if err != nil {
				return err
			}
			if isStructuredOutput(application.Config().OutputFormat) {
				return application.Write(stats)
			}

			printHeader("Analysis cache", stats.Path)
			printInfo("Entries: %d (%d from older analysis versions)", stats.Entries, stats.Stale)
			printInfo("With tempo: %d", stats.WithBPM)
			printInfo("Loops: %d, one-shots: %d", stats.ByType["loop"], stats.ByType["oneshot"])
			printInfo("Size: %.1f KiB", float64(stats.SizeBytes)/1024)
			if stats.Newest != nil {
				printInfo("Last update: %s", stats.Newest.Local().Format("2006-01-02 15:04:05"))
			}
			if len(stats.ByGenre) > 0 {
				genres := make([]string, 0, len(stats.ByGenre))
				for genre := range stats.ByGenre {
					genres = append(genres, genre)
				}
				sort.Strings(genres)
				rows := make([]map[string]any, 0, len(genres))
				for _, genre := range genres {
					rows = append(rows, map[string]any{"genre": genre, "files": stats.ByGenre[genre]})
				}
				return application.Write(rows)
			}
			return nil
		})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop records from older analysis versions and deleted files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(application *app.App, cache *library.Cache) error {
			n, err := cache.Purge()
			if err != nil {
				return fmt.Errorf("purge failed: %w", err)
			}
			printSuccess("Removed %d stale records", n)
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(application *app.App, cache *library.Cache) error {
			n, err := cache.Clear()
			if err != nil {
				return fmt.Errorf("clear failed: %w", err)
			}
			printSuccess("Removed %d records", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd, cacheClearCmd)
}

func withCache(cmd *cobra.Command, fn func(*app.App, *library.Cache) error) error {
	application, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	cache, err := application.Cache()
	if err != nil {
		return err
	}
	if cache == nil {
		return fmt.Errorf("the cache is disabled")
	}
	return fn(application, cache)
}
