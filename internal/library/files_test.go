package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"kick.wav", nil, true},
		{"KICK.WAV", nil, true},
		{"loop.aif", nil, true},
		{"notes.txt", nil, false},
		{"noext", nil, false},
		{"kick.wav", []string{"mp3"}, false},
		{"kick.mp3", []string{".MP3"}, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAudioFile(tt.path, tt.extensions), tt.path)
	}
}

func TestCollectAudioFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Drums", "Kick_01.wav"), "x")
	writeFile(t, filepath.Join(root, "Drums", "Snare_01.WAV"), "x")
	writeFile(t, filepath.Join(root, "Loops", "pad_120bpm.flac"), "x")
	writeFile(t, filepath.Join(root, "Loops", "readme.txt"), "x")
	writeFile(t, filepath.Join(root, ".trash", "old.wav"), "x")
	writeFile(t, filepath.Join(root, "._Kick_01.wav"), "x")

	files, err := CollectAudioFiles(root, nil, false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "Drums", "Kick_01.wav"),
		filepath.Join(root, "Drums", "Snare_01.WAV"),
		filepath.Join(root, "Loops", "pad_120bpm.flac"),
	}, files)
}

func TestCollectAudioFilesExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.wav"), "x")
	writeFile(t, filepath.Join(root, "b.mp3"), "x")

	files, err := CollectAudioFiles(root, []string{"mp3"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.mp3")}, files)
}

func TestCollectAudioFilesSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "hit.wav")
	writeFile(t, path, "x")

	files, err := CollectAudioFiles(path, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestCollectAudioFilesSymlinks(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeFile(t, filepath.Join(other, "linked.wav"), "x")
	if err := os.Symlink(other, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := CollectAudioFiles(root, nil, false)
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = CollectAudioFiles(root, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "link", "linked.wav")}, files)
}

func TestCollectAudioFilesMissingRoot(t *testing.T) {
	_, err := CollectAudioFiles(filepath.Join(t.TempDir(), "nope"), nil, false)
	assert.Error(t, err)
}
