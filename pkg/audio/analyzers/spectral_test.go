package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeBandEdges checks bin boundaries for typical and tiny windows.
func TestComputeBandEdges(t *testing.T) {
	tests := []struct {
		name       string
		fftSize    int
		sampleRate int
		expected   [5]int
	}{
		{"full window", 2048, 44100, [5]int{7, 28, 116, 279, 1024}},
		{"tiny window forces spacing", 64, 44100, [5]int{1, 2, 4, 9, 32}},
		{"low rate clamps at nyquist", 64, 8000, [5]int{1, 5, 20, 32, 32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := ComputeBandEdges(tt.fftSize, tt.sampleRate)
			assert.Equal(t, tt.expected, edges.Ends)
			assert.Equal(t, tt.fftSize/2, edges.Nyquist)

			for _, b := range Bands() {
				assert.GreaterOrEqual(t, edges.BinCount(b), 1)
			}
		})
	}
}

// TestBandOf checks that bins map onto contiguous bands.
func TestBandOf(t *testing.T) {
	edges := ComputeBandEdges(2048, 44100)

	assert.Equal(t, BandSub, edges.BandOf(1))
	assert.Equal(t, BandSub, edges.BandOf(6))
	assert.Equal(t, BandLowMid, edges.BandOf(7))
	assert.Equal(t, BandMid, edges.BandOf(28))
	assert.Equal(t, BandHighMid, edges.BandOf(116))
	assert.Equal(t, BandHigh, edges.BandOf(279))
	assert.Equal(t, BandHigh, edges.BandOf(1023))
	assert.Equal(t, 6, edges.BinCount(BandSub))
}

// TestFFTSizeFor checks window sizing bounds.
func TestFFTSizeFor(t *testing.T) {
	cases := map[int]int{1: 64, 64: 64, 65: 128, 100: 128, 1024: 1024, 5000: 2048, 1 << 20: 2048}
	for chunk, expected := range cases {
		assert.Equal(t, expected, FFTSizeFor(chunk), "chunk %d", chunk)
	}
}

// TestHannWindowIsPeriodic checks the periodic form of the window.
func TestHannWindowIsPeriodic(t *testing.T) {
	w := HannWindow(64)
	require.Len(t, w, 64)
	assert.InDelta(t, 0.0, w[0], 1e-12)
	assert.InDelta(t, 1.0, w[32], 1e-12)
	assert.InDelta(t, w[1], w[63], 1e-12)
}

// TestComputeBandColorsLength checks the color count for edge inputs.
func TestComputeBandColorsLength(t *testing.T) {
	assert.Empty(t, ComputeBandColors(whiteNoise(100, 1), 0, 44100))

	empty := ComputeBandColors(nil, 8, 44100)
	require.Len(t, empty, 8)
	for _, c := range empty {
		assert.Equal(t, NeutralColor, c)
	}

	short := ComputeBandColors(whiteNoise(10, 4), 16, 44100)
	require.Len(t, short, 16)
	for i := 10; i < 16; i++ {
		assert.Equal(t, NeutralColor, short[i])
	}
}

// TestComputeBandColorsSilence checks the neutral fallback.
func TestComputeBandColorsSilence(t *testing.T) {
	colors := ComputeBandColors(make([]float32, 44100), 32, 44100)
	require.Len(t, colors, 32)
	for _, c := range colors {
		assert.Equal(t, NeutralColor, c)
	}
}

// TestComputeBandColorsLowTone checks that a sub-bass tone renders red.
func TestComputeBandColorsLowTone(t *testing.T) {
	colors := ComputeBandColors(sine(60, 2, 44100, 0.8), 16, 44100)
	require.Len(t, colors, 16)

	for _, c := range colors {
		assert.InDelta(t, 0.85, c[0], 1e-3)
		assert.Less(t, c[1], float32(0.2))
		assert.Less(t, c[2], float32(0.2))
	}
}

// TestComputeBandColorsHighTone checks that a 10 kHz tone renders blue.
func TestComputeBandColorsHighTone(t *testing.T) {
	colors := ComputeBandColors(sine(10000, 2, 44100, 0.8), 16, 44100)
	require.Len(t, colors, 16)

	for _, c := range colors {
		assert.InDelta(t, 0.85, c[2], 1e-3)
		assert.Less(t, c[0], c[2])
		assert.Less(t, c[1], c[2])
	}
}

// TestComputeBandColorsBrightness checks channel range and normalization.
func TestComputeBandColorsBrightness(t *testing.T) {
	colors := ComputeBandColors(whiteNoise(44100, 9), 64, 44100)

	for _, c := range colors {
		brightest := max(c[0], c[1], c[2])
		assert.InDelta(t, 0.85, brightest, 1e-4)
		for _, ch := range c {
			assert.GreaterOrEqual(t, ch, float32(0))
			assert.LessOrEqual(t, ch, float32(1))
		}
	}
}

// TestComputeBandColorsDeterministic checks that repeated calls match exactly.
func TestComputeBandColorsDeterministic(t *testing.T) {
	samples := whiteNoise(22050, 5)
	assert.Equal(t, ComputeBandColors(samples, 32, 44100), ComputeBandColors(samples, 32, 44100))
}

// TestBlendBandColors checks the share-weighted blend.
func TestBlendBandColors(t *testing.T) {
	assert.Equal(t, NeutralColor, BlendBandColors(BandDensities{}))

	onlyMid := BlendBandColors(BandDensities{BandMid: 3})
	assert.InDelta(t, 0.15*0.85/0.90, onlyMid[0], 1e-6)
	assert.InDelta(t, 0.85, onlyMid[1], 1e-6)
	assert.InDelta(t, 0.20*0.85/0.90, onlyMid[2], 1e-6)

	even := BlendBandColors(BandDensities{BandSub: 1, BandHigh: 1})
	// (0.575, 0.2, 0.525) scaled by 0.85/0.575
	assert.InDelta(t, 0.85, even[0], 1e-6)
	assert.InDelta(t, 0.2*0.85/0.575, even[1], 1e-6)
	assert.InDelta(t, 0.525*0.85/0.575, even[2], 1e-6)
}
