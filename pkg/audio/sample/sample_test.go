package sample

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/pcm"
)

// fakeSource serves in-memory buffers and counts decode calls.
type fakeSource struct {
	buffers map[string]*pcm.Buffer
	err     error
	decodes []float64
}

func (f *fakeSource) Decode(path string, maxSeconds float64) (*pcm.Buffer, error) {
	f.decodes = append(f.decodes, maxSeconds)
	if f.err != nil {
		return nil, f.err
	}
	buf, ok := f.buffers[path]
	if !ok {
		return nil, pcm.NewDecodeError(pcm.FormatUnknown, path, pcm.ErrCodeOpen, "no such file", nil)
	}
	if maxSeconds > 0 {
		return prefix(buf, maxSeconds), nil
	}
	return buf, nil
}

func (f *fakeSource) Probe(path string) (*pcm.Info, error) {
	if f.err != nil {
		return nil, f.err
	}
	buf, ok := f.buffers[path]
	if !ok {
		return nil, pcm.NewDecodeError(pcm.FormatUnknown, path, pcm.ErrCodeOpen, "no such file", nil)
	}
	return &pcm.Info{Path: path, Format: buf.Format, SampleRate: buf.SampleRate, Channels: 1, Duration: buf.Duration}, nil
}

func clickBuffer(path string, bpm, seconds float64, sampleRate int) *pcm.Buffer {
	samples := make([]float32, int(seconds*float64(sampleRate)))
	period := int(math.Round(60.0 / bpm * float64(sampleRate)))
	for start := 0; start < len(samples); start += period {
		for j := 0; j < sampleRate/100 && start+j < len(samples); j++ {
			samples[start+j] = 0.8
		}
	}
	return &pcm.Buffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   time.Duration(seconds * float64(time.Second)),
		Format:     pcm.FormatWAV,
		Path:       path,
	}
}

// AnalyzerTestSuite runs full analyses against a fake source
type AnalyzerTestSuite struct {
	suite.Suite
	source   *fakeSource
	analyzer *Analyzer
}

// SetupTest runs before each test
func (s *AnalyzerTestSuite) SetupTest() {
	s.source = &fakeSource{buffers: map[string]*pcm.Buffer{}}
	s.analyzer = NewAnalyzer(s.source, DefaultOptions())
}

// TestFilenameMetadataWins checks that filename tempo pre-empts detection
func (s *AnalyzerTestSuite) TestFilenameMetadataWins() {
	path := "/lib/Trap Pack/Drums/Trap_Loop_140BPM_Cmin.wav"
	s.source.buffers[path] = clickBuffer(path, 120, 4, 44100)

	result, err := s.analyzer.Analyze(context.Background(), path)
	s.Require().NoError(err)

	s.Require().NotNil(result.BPM)
	s.Equal(140, *result.BPM)
	s.Equal(BPMSourceFilename, result.BPMSource)
	s.Require().NotNil(result.Key)
	s.Equal("Cmin", *result.Key)
	s.Require().NotNil(result.Genre)
	s.Equal("Trap", *result.Genre)
	s.Contains(result.Tags, "drums")
	s.Equal(TypeLoop, result.Type)
	s.Equal(AnalysisVersion, result.Version)
	s.Equal(4*time.Second, result.Duration)

	s.Require().NotNil(result.Waveform)
	s.Len(result.Waveform.Peaks, 128)
	s.Len(result.Waveform.Colors, 128)
	s.InDelta(4.0, result.Waveform.DurationSecs, 1e-9)

	// one full decode serves everything
	s.Equal([]float64{0}, s.source.decodes)
}

// TestAudioTempoDetection checks the fallback to audio analysis
func (s *AnalyzerTestSuite) TestAudioTempoDetection() {
	path := "/lib/pack/Groove_A.wav"
	s.source.buffers[path] = clickBuffer(path, 120, 6, 44100)

	result, err := s.analyzer.Analyze(context.Background(), path)
	s.Require().NoError(err)

	s.Require().NotNil(result.BPM)
	s.Equal(120, *result.BPM)
	s.Equal(BPMSourceAudio, result.BPMSource)
}

// TestShortClipSkipsDetection checks the minimum duration for audio tempo
func (s *AnalyzerTestSuite) TestShortClipSkipsDetection() {
	path := "/lib/pack/Snare.wav"
	s.source.buffers[path] = clickBuffer(path, 120, 1, 44100)

	result, err := s.analyzer.Analyze(context.Background(), path)
	s.Require().NoError(err)

	s.Nil(result.BPM)
	s.Equal(BPMSourceNone, result.BPMSource)
	s.Equal(TypeOneShot, result.Type)
	s.Contains(result.Tags, "snare")
}

// TestCappedDecodeWithoutWaveform checks tempo and silence share one capped decode
func (s *AnalyzerTestSuite) TestCappedDecodeWithoutWaveform() {
	opts := DefaultOptions()
	opts.Waveform = false
	analyzer := NewAnalyzer(s.source, opts)

	path := "/lib/pack/Texture.wav"
	s.source.buffers[path] = clickBuffer(path, 100, 8, 44100)

	result, err := analyzer.Analyze(context.Background(), path)
	s.Require().NoError(err)

	s.Nil(result.Waveform)
	s.Equal([]float64{30}, s.source.decodes)
}

// TestDecodeFailure checks that decode errors surface with their type
func (s *AnalyzerTestSuite) TestDecodeFailure() {
	s.source.err = pcm.NewDecodeError(pcm.FormatMP3, "/x.mp3", pcm.ErrCodeDecoding, "bad frame", nil)

	_, err := s.analyzer.Analyze(context.Background(), "/x.mp3")
	var decodeErr *pcm.DecodeError
	s.Require().True(errors.As(err, &decodeErr))
	s.Equal(pcm.ErrCodeDecoding, decodeErr.Code)
}

// TestCanceledContext checks cancellation between stages
func (s *AnalyzerTestSuite) TestCanceledContext() {
	path := "/lib/pack/Kick.wav"
	s.source.buffers[path] = clickBuffer(path, 120, 1, 44100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.analyzer.Analyze(ctx, path)
	s.ErrorIs(err, context.Canceled)
	s.Empty(s.source.decodes)
}

// TestAnalyzeFileUsesPackName checks that genre can come from the root folder name
func (s *AnalyzerTestSuite) TestAnalyzeFileUsesPackName() {
	root := "/home/user/Samples/Lo-Fi Pack"
	path := root + "/keys/Rhodes_Chord.wav"
	s.source.buffers[path] = clickBuffer(path, 90, 1, 44100)

	result, err := s.analyzer.AnalyzeFile(context.Background(), root, path)
	s.Require().NoError(err)

	s.Require().NotNil(result.Genre)
	s.Equal("Lo-Fi", *result.Genre)
	s.Equal([]string{"chord", "keys", "melodic"}, result.Tags)
}

func TestAnalyzerTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerTestSuite))
}

// TestClassifyType checks the decision order of the loop/one-shot rules.
func TestClassifyType(t *testing.T) {
	always := func() bool { return true }
	never := func() bool { return false }

	tests := []struct {
		name     string
		file     string
		duration time.Duration
		known    bool
		probe    func() bool
		expected Type
	}{
		{"loop keyword", "Drum_Loop_120.wav", 500 * time.Millisecond, true, always, TypeLoop},
		{"lp suffix", "Bass_lp.wav", time.Second, true, always, TypeLoop},
		{"loop beats fx", "FX_Loop.wav", time.Second, true, always, TypeLoop},
		{"oneshot keyword", "Kick_OneShot.wav", 10 * time.Second, true, never, TypeOneShot},
		{"hit keyword", "Snare_hit.wav", 10 * time.Second, true, never, TypeOneShot},
		{"short", "Synth.wav", time.Second, true, never, TypeOneShot},
		{"silent tail", "Synth.wav", 5 * time.Second, true, always, TypeOneShot},
		{"sustained", "Synth.wav", 5 * time.Second, true, never, TypeLoop},
		{"long", "Synth.wav", 25 * time.Second, true, always, TypeLoop},
		{"unknown duration", "Synth.wav", 0, false, never, TypeOneShot},
		{"nil probe", "Synth.wav", 5 * time.Second, true, nil, TypeLoop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyType(tt.file, tt.duration, tt.known, tt.probe))
		})
	}
}

// TestClassifyTypeProbesLazily checks that the silence probe runs only in the probe window.
func TestClassifyTypeProbesLazily(t *testing.T) {
	calls := 0
	probe := func() bool { calls++; return true }

	ClassifyType("Synth.wav", 25*time.Second, true, probe)
	ClassifyType("Synth.wav", time.Second, true, probe)
	ClassifyType("Synth_Loop.wav", 5*time.Second, true, probe)
	assert.Equal(t, 0, calls)

	ClassifyType("Synth.wav", 5*time.Second, true, probe)
	assert.Equal(t, 1, calls)
}

// TestOptionsFingerprint checks every result-shaping option changes the fingerprint.
func TestOptionsFingerprint(t *testing.T) {
	base := DefaultOptions()
	assert.Equal(t, base.Fingerprint(), DefaultOptions().Fingerprint())

	variants := []func(*Options){
		func(o *Options) { o.NumPeaks = 64 },
		func(o *Options) { o.DetectBPM = false },
		func(o *Options) { o.TempoMaxSeconds = 15 },
		func(o *Options) { o.SilenceMaxSeconds = 15 },
		func(o *Options) { o.MinBPMDuration = 4 * time.Second },
		func(o *Options) { o.Classify = false },
		func(o *Options) { o.Waveform = false },
	}
	seen := map[string]bool{base.Fingerprint(): true}
	for i, change := range variants {
		opts := DefaultOptions()
		change(&opts)
		fp := opts.Fingerprint()
		assert.False(t, seen[fp], "variant %d collides: %s", i, fp)
		seen[fp] = true
	}
}

// TestWaveformDataJSON checks the serialized field names.
func TestWaveformDataJSON(t *testing.T) {
	data := WaveformData{
		Peaks:        []float32{0.5, 1},
		Colors:       []analyzers.RGB{analyzers.NeutralColor, {0.85, 0.1, 0.1}},
		DurationSecs: 1.5,
	}

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "peaks")
	assert.Contains(t, decoded, "colors")
	assert.Equal(t, 1.5, decoded["duration_secs"])
}
