package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
	"github.com/RyanBlaney/sample-analyzer/pkg/metadata"
)

var bpmDetectOnly bool

var bpmCmd = &cobra.Command{
	Use:   "bpm <file>...",
	Short: "Report the tempo of one or more files",
	Long: `Report each file's tempo. A tempo written in the filename (for example
"drums_124bpm.wav") wins; otherwise the first 30 seconds of audio are run
through onset autocorrelation. Files with no detectable pulse report none.

Examples:
  sample-analyzer bpm loop_01.wav loop_02.wav
  sample-analyzer bpm --detect-only -o json break_124.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBPM,
}

func init() {
	rootCmd.AddCommand(bpmCmd)

	bpmCmd.Flags().BoolVar(&bpmDetectOnly, "detect-only", false,
		"ignore tempos in filenames and always analyze the audio")
}

type bpmResult struct {
	File   string           `json:"file" yaml:"file"`
	BPM    *int             `json:"bpm" yaml:"bpm"`
	Source sample.BPMSource `json:"source" yaml:"source"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
}

func runBPM(cmd *cobra.Command, args []string) error {
	application, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	results := make([]bpmResult, 0, len(args))
	failed := 0
	for _, path := range args {
		result := bpmResult{File: path, Source: sample.BPMSourceNone}

		if !bpmDetectOnly {
			if bpm, ok := metadata.ParseBPM(filepath.Base(path)); ok {
				result.BPM = &bpm
				result.Source = sample.BPMSourceFilename
				results = append(results, result)
				continue
			}
		}

		bpm, ok, err := application.Analyzer().DetectBPM(path)
		switch {
		case err != nil:
			failed++
			result.Error = err.Error()
		case ok:
			result.BPM = &bpm
			result.Source = sample.BPMSourceAudio
		}
		results = append(results, result)
	}

	if isStructuredOutput(application.Config().OutputFormat) {
		if err := application.Write(results); err != nil {
			return err
		}
	} else {
		rows := make([]map[string]any, 0, len(results))
		for _, r := range results {
			bpm := "none"
			if r.BPM != nil {
				bpm = fmt.Sprintf("%d", *r.BPM)
			}
			rows = append(rows, map[string]any{
				"file":   filepath.Base(r.File),
				"bpm":    bpm,
				"source": string(r.Source),
				"error":  r.Error,
			})
		}
		if err := application.Write(rows); err != nil {
			return err
		}
	}

	if failed == len(args) {
		return fmt.Errorf("no file could be decoded")
	}
	return nil
}
