package sample

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/pcm"
	"github.com/RyanBlaney/sample-analyzer/pkg/metadata"
)

// Source supplies decoded audio and header facts. *pcm.Factory implements it.
type Source interface {
	Decode(path string, maxSeconds float64) (*pcm.Buffer, error)
	Probe(path string) (*pcm.Info, error)
}

// Options tunes the file-level analysis
type Options struct {
	NumPeaks          int           `json:"num_peaks" yaml:"num_peaks"`
	TempoMaxSeconds   float64       `json:"tempo_max_seconds" yaml:"tempo_max_seconds"`
	SilenceMaxSeconds float64       `json:"silence_max_seconds" yaml:"silence_max_seconds"`
	MinBPMDuration    time.Duration `json:"min_bpm_duration" yaml:"min_bpm_duration"`
	DetectBPM         bool          `json:"detect_bpm" yaml:"detect_bpm"`
	Classify          bool          `json:"classify" yaml:"classify"`
	Waveform          bool          `json:"waveform" yaml:"waveform"`
}

// DefaultOptions returns the settings the library uses out of the box
func DefaultOptions() Options {
	return Options{
		NumPeaks:          128,
		TempoMaxSeconds:   30,
		SilenceMaxSeconds: 30,
		MinBPMDuration:    2 * time.Second,
		DetectBPM:         true,
		Classify:          true,
		Waveform:          true,
	}
}

// Fingerprint identifies the settings that shape an Analysis. Records made
// under a different fingerprint must not be reused.
func (o Options) Fingerprint() string {
	return fmt.Sprintf("peaks=%d;bpm=%t;tempo=%g;silence=%g;min_bpm=%s;classify=%t;waveform=%t",
		o.NumPeaks, o.DetectBPM, o.TempoMaxSeconds, o.SilenceMaxSeconds,
		o.MinBPMDuration, o.Classify, o.Waveform)
}

// Analyzer runs the analyzers against files
type Analyzer struct {
	source Source
	opts   Options
	logger logging.Logger
}

// NewAnalyzer creates a file analyzer. A nil source uses the built-in decoders.
func NewAnalyzer(source Source, opts Options) *Analyzer {
	if source == nil {
		source = pcm.NewFactory()
	}
	return &Analyzer{
		source: source,
		opts:   opts,
		logger: logging.WithFields(logging.Fields{
			"component": "sample_analyzer",
		}),
	}
}

// Options returns the analyzer settings
func (a *Analyzer) Options() Options {
	return a.opts
}

var defaultAnalyzer = NewAnalyzer(nil, DefaultOptions())

// ComputeWaveform decodes the whole file and returns n peaks and colors
func ComputeWaveform(path string, n int) (*WaveformData, error) {
	return defaultAnalyzer.ComputeWaveform(path, n)
}

// DetectBPM estimates the tempo from the first 30 seconds of the file. Decode
// failures count as no result.
func DetectBPM(path string) (int, bool) {
	bpm, ok, _ := defaultAnalyzer.DetectBPM(path)
	return bpm, ok
}

// HasTrailingSilence runs the one-shot heuristic on the first 30 seconds of
// the file. Decode failures count as false.
func HasTrailingSilence(path string) bool {
	return defaultAnalyzer.HasTrailingSilence(path)
}

// ComputeWaveform decodes the whole file and returns n peaks and colors
func (a *Analyzer) ComputeWaveform(path string, n int) (*WaveformData, error) {
	buf, err := a.source.Decode(path, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return waveformFromBuffer(buf, n), nil
}

// DetectBPM estimates the tempo from the start of the file
func (a *Analyzer) DetectBPM(path string) (int, bool, error) {
	buf, err := a.source.Decode(path, a.opts.TempoMaxSeconds)
	if err != nil {
		return 0, false, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	bpm, ok := analyzers.DetectTempo(buf.Samples, buf.SampleRate)
	return bpm, ok, nil
}

// HasTrailingSilence runs the one-shot heuristic on the start of the file
func (a *Analyzer) HasTrailingSilence(path string) bool {
	buf, err := a.source.Decode(path, a.opts.SilenceMaxSeconds)
	if err != nil {
		a.logger.Warn("Silence probe failed to decode file", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return false
	}
	return analyzers.HasTrailingSilence(buf.Samples, buf.SampleRate)
}

// Analyze produces the full record for path. Path-derived metadata is parsed
// from the path as given.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Analysis, error) {
	return a.analyze(ctx, path, path)
}

// AnalyzeFile analyzes path, parsing genre and tags from its location below
// root. The root folder name is kept since pack names often carry the genre.
func (a *Analyzer) AnalyzeFile(ctx context.Context, root, path string) (*Analysis, error) {
	metaPath := path
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		metaPath = filepath.Join(filepath.Base(root), rel)
	}
	return a.analyze(ctx, path, metaPath)
}

func (a *Analyzer) analyze(ctx context.Context, path, metaPath string) (*Analysis, error) {
	logger := a.logger.WithFields(logging.Fields{
		"function": "Analyze",
		"path":     path,
	})

	filename := filepath.Base(path)
	result := &Analysis{
		Path:       path,
		Filename:   filename,
		BPMSource:  BPMSourceNone,
		Tags:       metadata.ParseTags(filepath.Dir(metaPath), filename),
		Version:    AnalysisVersion,
		AnalyzedAt: time.Now().UTC(),
	}
	if key, ok := metadata.ParseKey(filename); ok {
		result.Key = &key
	}
	if genre, ok := metadata.ParseGenre(metaPath); ok {
		result.Genre = &genre
	}

	info, err := a.source.Probe(path)
	if err != nil {
		logger.Warn("Probe failed, duration unknown", logging.Fields{
			"error": err.Error(),
		})
	} else {
		result.Format = string(info.Format)
		result.Duration = info.Duration
		result.SampleRate = info.SampleRate
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	audio := newAudioLoader(a.source, path)

	if a.opts.Waveform && a.opts.NumPeaks > 0 {
		buf, err := audio.full()
		if err != nil {
			logger.Error(err, "Failed to decode audio for waveform")
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		result.Waveform = waveformFromBuffer(buf, a.opts.NumPeaks)
		if result.Format == "" {
			result.Format = string(buf.Format)
			result.SampleRate = buf.SampleRate
		}
		logger.Debug("Computed waveform", logging.Fields{
			"peaks":   a.opts.NumPeaks,
			"samples": len(buf.Samples),
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.resolveBPM(result, audio, logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.opts.Classify {
		result.Type = ClassifyType(filename, result.Duration, result.DurationKnown(), func() bool {
			buf, err := audio.capped(a.opts.SilenceMaxSeconds)
			if err != nil {
				logger.Warn("Silence probe failed to decode file", logging.Fields{
					"error": err.Error(),
				})
				return false
			}
			return analyzers.HasTrailingSilence(buf.Samples, buf.SampleRate)
		})
	}

	logger.Debug("Analysis complete", logging.Fields{
		"bpm_source":  result.BPMSource,
		"sample_type": result.Type,
		"duration":    result.Duration.Seconds(),
	})

	return result, nil
}

// resolveBPM takes the tempo from the filename when present and otherwise
// detects it from audio for clips long enough to carry a beat.
func (a *Analyzer) resolveBPM(result *Analysis, audio *audioLoader, logger logging.Logger) {
	if bpm, ok := metadata.ParseBPM(result.Filename); ok {
		result.BPM = &bpm
		result.BPMSource = BPMSourceFilename
		return
	}

	if !a.opts.DetectBPM || !result.DurationKnown() || result.Duration < a.opts.MinBPMDuration {
		return
	}

	buf, err := audio.capped(a.opts.TempoMaxSeconds)
	if err != nil {
		logger.Warn("Tempo detection failed to decode file", logging.Fields{
			"error": err.Error(),
		})
		return
	}

	if bpm, ok := analyzers.DetectTempo(buf.Samples, buf.SampleRate); ok {
		result.BPM = &bpm
		result.BPMSource = BPMSourceAudio
	}
}

func waveformFromBuffer(buf *pcm.Buffer, n int) *WaveformData {
	return &WaveformData{
		Peaks:        analyzers.ExtractPeaks(buf.Samples, n),
		Colors:       analyzers.ComputeBandColors(buf.Samples, n, buf.SampleRate),
		DurationSecs: buf.Duration.Seconds(),
	}
}
