package pcm

import "time"

// Format represents an audio container format
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatAIFF    Format = "aiff"
	FormatOGG     Format = "ogg"
	FormatUnknown Format = "unknown"
)

// Buffer is decoded mono PCM audio. Samples are roughly in [-1, 1].
// A Buffer is never modified after it is returned by a decoder.
type Buffer struct {
	Samples    []float32     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Format     Format        `json:"format"`
	Path       string        `json:"path"`

	// Truncated is set when decoding stopped at the requested cap.
	Truncated bool `json:"truncated"`
	// Partial is set when a decode error ended the stream early.
	Partial bool `json:"partial"`
}

// DecodedDuration returns the length of the decoded samples.
func (b *Buffer) DecodedDuration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return framesToDuration(len(b.Samples), b.SampleRate)
}

// Info contains header-level facts about an audio file.
type Info struct {
	Path       string        `json:"path"`
	Format     Format        `json:"format"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bit_depth,omitempty"`
	Duration   time.Duration `json:"duration"` // 0 when unknown
}

// Decoder decodes one container format.
type Decoder interface {
	// Decode returns mono PCM, stopping after maxSeconds of audio when
	// maxSeconds is positive.
	Decode(path string, maxSeconds float64) (*Buffer, error)
	// Probe reads only what is needed to report the file's properties.
	Probe(path string) (*Info, error)
}

func framesToDuration(frames, sampleRate int) time.Duration {
	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}
