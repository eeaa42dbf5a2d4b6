package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractPeaksLength checks that the peak count always matches the request.
func TestExtractPeaksLength(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		n       int
	}{
		{"empty", nil, 16},
		{"zero peaks", []float32{0.1, 0.2}, 0},
		{"shorter than n", []float32{0.5, -0.5}, 8},
		{"exact", whiteNoise(128, 1), 128},
		{"long", whiteNoise(10000, 2), 100},
		{"remainder", whiteNoise(1001, 3), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peaks := ExtractPeaks(tt.samples, tt.n)
			assert.Len(t, peaks, tt.n)
			for _, p := range peaks {
				assert.GreaterOrEqual(t, p, float32(0))
				assert.LessOrEqual(t, p, float32(1))
			}
		})
	}
}

// TestExtractPeaksShortBuffer checks absolute values and zero padding.
func TestExtractPeaksShortBuffer(t *testing.T) {
	peaks := ExtractPeaks([]float32{0.5, -0.25}, 4)
	assert.Equal(t, []float32{1, 0.5, 0, 0}, peaks)
}

// TestExtractPeaksChunked checks per-chunk maxima and normalization.
func TestExtractPeaksChunked(t *testing.T) {
	samples := []float32{0.1, -0.2, 0.4, 0.1, -0.8, 0.2, 0.05, 0.1}
	peaks := ExtractPeaks(samples, 4)

	require.Len(t, peaks, 4)
	assert.InDelta(t, 0.25, peaks[0], 1e-6)
	assert.InDelta(t, 0.5, peaks[1], 1e-6)
	assert.Equal(t, float32(1), peaks[2])
	assert.InDelta(t, 0.125, peaks[3], 1e-6)
}

// TestExtractPeaksSilence checks that silence stays at zero instead of dividing by zero.
func TestExtractPeaksSilence(t *testing.T) {
	peaks := ExtractPeaks(make([]float32, 4096), 32)
	for _, p := range peaks {
		assert.Equal(t, float32(0), p)
	}
}

// TestExtractPeaksMaxIsOne checks that non-silent input reaches exactly 1.0.
func TestExtractPeaksMaxIsOne(t *testing.T) {
	peaks := ExtractPeaks(sine(440, 1, 44100, 0.3), 64)

	var maxPeak float32
	for _, p := range peaks {
		maxPeak = max(maxPeak, p)
	}
	assert.Equal(t, float32(1), maxPeak)
}

// TestExtractPeaksDoesNotMutate checks that input is left untouched and results repeat.
func TestExtractPeaksDoesNotMutate(t *testing.T) {
	samples := []float32{-0.5, 0.25, -1, 0.75}
	original := append([]float32(nil), samples...)

	first := ExtractPeaks(samples, 2)
	second := ExtractPeaks(samples, 2)

	assert.Equal(t, original, samples)
	assert.Equal(t, first, second)
}
