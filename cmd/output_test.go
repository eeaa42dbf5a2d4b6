package cmd

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
)

func TestRenderWaveformPlain(t *testing.T) {
	viper.Set("display.colors", false)
	defer viper.Set("display.colors", nil)

	var buf bytes.Buffer
	renderWaveform(&buf, &sample.WaveformData{
		Peaks:  []float32{0, 0.5, 1},
		Colors: []analyzers.RGB{analyzers.NeutralColor, analyzers.NeutralColor, analyzers.NeutralColor},
	})

	line := strings.TrimSuffix(buf.String(), "\n")
	assert.Equal(t, 3, utf8.RuneCountInString(line))
	assert.Equal(t, " ▄█", line)
}

func TestRenderWaveformColored(t *testing.T) {
	viper.Set("display.colors", true)
	defer viper.Set("display.colors", nil)
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer
	renderWaveform(&buf, &sample.WaveformData{
		Peaks:  []float32{1},
		Colors: []analyzers.RGB{{1, 0, 0.5}},
	})
	assert.Contains(t, buf.String(), "\033[38;2;255;0;128m█")
}

func TestTo8bit(t *testing.T) {
	assert.Equal(t, 0, to8bit(-0.2))
	assert.Equal(t, 255, to8bit(1.4))
	assert.Equal(t, 217, to8bit(0.85))
}

func TestIsStructuredOutput(t *testing.T) {
	assert.True(t, isStructuredOutput("json"))
	assert.True(t, isStructuredOutput("YAML"))
	assert.False(t, isStructuredOutput("table"))
	assert.False(t, isStructuredOutput("csv"))
}

func TestStripWaveformsCopies(t *testing.T) {
	original := []*sample.Analysis{{
		Filename: "a.wav",
		Waveform: &sample.WaveformData{Peaks: []float32{1}},
	}}

	stripped := stripWaveforms(original)
	require.Len(t, stripped, 1)
	assert.Nil(t, stripped[0].Waveform)
	assert.NotNil(t, original[0].Waveform)
	assert.Equal(t, "a.wav", stripped[0].Filename)
}
