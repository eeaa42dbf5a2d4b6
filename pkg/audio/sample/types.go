package sample

import (
	"time"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/analyzers"
)

// AnalysisVersion identifies the analysis algorithms that produced a record.
// Bump it whenever band boundaries, reference colors or detection thresholds
// change so cached results are recomputed.
const AnalysisVersion = 2

// Type is the loop/one-shot classification of a sample
type Type string

const (
	TypeLoop    Type = "loop"
	TypeOneShot Type = "oneshot"
)

// BPMSource records where a sample's tempo came from
type BPMSource string

const (
	BPMSourceFilename BPMSource = "filename"
	BPMSourceAudio    BPMSource = "audio"
	BPMSourceNone     BPMSource = "none"
)

// WaveformData is the display envelope of a file. Peaks and Colors always
// have the same length.
type WaveformData struct {
	Peaks        []float32       `json:"peaks" yaml:"peaks"`
	Colors       []analyzers.RGB `json:"colors" yaml:"colors"`
	DurationSecs float64         `json:"duration_secs" yaml:"duration_secs"`
}

// Analysis is the complete record produced for one sample file
type Analysis struct {
	Path       string        `json:"path" yaml:"path"`
	Filename   string        `json:"filename" yaml:"filename"`
	Format     string        `json:"format" yaml:"format"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	SampleRate int           `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	BPM        *int          `json:"bpm,omitempty" yaml:"bpm,omitempty"`
	BPMSource  BPMSource     `json:"bpm_source" yaml:"bpm_source"`
	Key        *string       `json:"key,omitempty" yaml:"key,omitempty"`
	Genre      *string       `json:"genre,omitempty" yaml:"genre,omitempty"`
	Tags       []string      `json:"tags" yaml:"tags"`
	Type       Type          `json:"sample_type" yaml:"sample_type"`
	Waveform   *WaveformData `json:"waveform,omitempty" yaml:"waveform,omitempty"`
	Version    int           `json:"analysis_version" yaml:"analysis_version"`
	AnalyzedAt time.Time     `json:"analyzed_at" yaml:"analyzed_at"`
}

// DurationKnown reports whether the container declared a length.
func (a *Analysis) DurationKnown() bool {
	return a.Duration > 0
}
