package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
)

// ANSI terminal colors
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

// status lines go to stderr so stdout stays parseable
var statusOut io.Writer = os.Stderr

func colorsEnabled() bool {
	return viper.GetBool("display.colors") && os.Getenv("NO_COLOR") == ""
}

func paint(color, s string) string {
	if !colorsEnabled() {
		return s
	}
	return color + s + ColorReset
}

func printHeader(title, subject string) {
	if quiet {
		return
	}
	fmt.Fprintf(statusOut, "%s: %s\n", paint(ColorBold+ColorBlue, title), paint(ColorCyan, subject))
	fmt.Fprintln(statusOut, paint(ColorBlue, strings.Repeat("═", 80)))
}

func printSectionHeader(title string) {
	if quiet {
		return
	}
	fmt.Fprintln(statusOut, paint(ColorBold+ColorBlue, title))
}

func printSuccess(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(statusOut, "   %s %s\n", paint(ColorGreen, "✓"), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(statusOut, "   %s %s\n", paint(ColorYellow, "⚠"), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintf(statusOut, "   %s %s\n", paint(ColorRed, "✗"), fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(statusOut, "   %s %s\n", paint(ColorCyan, "•"), fmt.Sprintf(format, args...))
}

// isStructuredOutput reports whether results should be emitted as whole
// records rather than flattened rows
func isStructuredOutput(format string) bool {
	switch strings.ToLower(format) {
	case "json", "yaml":
		return true
	}
	return false
}

// stripWaveforms drops waveform payloads from records for compact output
func stripWaveforms(analyses []*sample.Analysis) []*sample.Analysis {
	out := make([]*sample.Analysis, len(analyses))
	for i, a := range analyses {
		c := *a
		c.Waveform = nil
		out[i] = &c
	}
	return out
}

var waveBlocks = []rune(" ▁▂▃▄▅▆▇█")

// renderWaveform draws peaks as a single row of block characters, each
// tinted with its band color when the terminal allows it
func renderWaveform(w io.Writer, data *sample.WaveformData) {
	var sb strings.Builder
	for i, p := range data.Peaks {
		idx := int(p * float32(len(waveBlocks)-1))
		idx = max(0, min(idx, len(waveBlocks)-1))
		block := string(waveBlocks[idx])
		if colorsEnabled() && i < len(data.Colors) {
			block = trueColor(data.Colors[i]) + block + ColorReset
		}
		sb.WriteString(block)
	}
	fmt.Fprintln(w, sb.String())
}

func trueColor(c analyzers.RGB) string {
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", to8bit(c[0]), to8bit(c[1]), to8bit(c[2]))
}

func to8bit(v float32) int {
	return max(0, min(255, int(v*255+0.5)))
}
