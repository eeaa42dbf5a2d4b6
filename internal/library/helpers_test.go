package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
)

// writeFile creates path with the given contents, making parent folders
func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// writeMonoWAV writes a short 16-bit mono WAV: a burst followed by silence
func writeMonoWAV(t *testing.T, path string, sampleRate, frames int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, frames)
	for i := 0; i < frames/10; i++ {
		if i%2 == 0 {
			data[i] = 12000
		} else {
			data[i] = -12000
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

// stubAnalyzer returns canned records and fails for paths listed in failures
type stubAnalyzer struct {
	opts     sample.Options
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]error
}

func newStubAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{
		opts:     sample.DefaultOptions(),
		calls:    map[string]int{},
		failures: map[string]error{},
	}
}

func (s *stubAnalyzer) AnalyzeFile(ctx context.Context, root, path string) (*sample.Analysis, error) {
	s.mu.Lock()
	s.calls[path]++
	err := s.failures[path]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return &sample.Analysis{
		Path:      path,
		Filename:  filepath.Base(path),
		Format:    "wav",
		BPMSource: sample.BPMSourceNone,
		Tags:      []string{},
		Type:      sample.TypeOneShot,
		Version:   sample.AnalysisVersion,
	}, nil
}

func (s *stubAnalyzer) Options() sample.Options {
	return s.opts
}

func (s *stubAnalyzer) callCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *stubAnalyzer) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

var errBroken = errors.New("broken file")
