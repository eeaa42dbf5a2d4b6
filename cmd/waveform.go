package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var waveformPeaks int

var waveformCmd = &cobra.Command{
	Use:   "waveform <file>",
	Short: "Compute waveform peaks and spectral colors for a file",
	Long: `Decode the whole file and reduce it to a fixed number of columns. Each
column carries its normalized peak amplitude and an RGB color blended from
the energy in six frequency bands.

Examples:
  # Default 128 columns, drawn in the terminal
  sample-analyzer waveform Kick_01.wav

  # 512 columns as JSON for a UI
  sample-analyzer waveform --peaks 512 -o json pad_loop.flac`,
	Args: cobra.ExactArgs(1),
	RunE: runWaveform,
}

func init() {
	rootCmd.AddCommand(waveformCmd)

	waveformCmd.Flags().IntVarP(&waveformPeaks, "peaks", "n", 128,
		"number of waveform columns")
}

func runWaveform(cmd *cobra.Command, args []string) error {
	path := args[0]
	if waveformPeaks < 0 {
		return fmt.Errorf("peaks cannot be negative")
	}

	application, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	data, err := application.Analyzer().ComputeWaveform(path, waveformPeaks)
	if err != nil {
		return fmt.Errorf("waveform failed: %w", err)
	}

	if isStructuredOutput(application.Config().OutputFormat) {
		return application.Write(data)
	}

	printHeader("Waveform", path)
	printInfo("Duration: %.2fs", data.DurationSecs)
	printInfo("Columns: %d", len(data.Peaks))
	renderWaveform(os.Stdout, data)
	return nil
}
