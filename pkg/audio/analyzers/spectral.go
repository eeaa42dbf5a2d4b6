package analyzers

import (
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// SpectralAnalyzer computes per-band energy densities for fixed-size frames.
// It keeps a scratch frame between calls and is therefore not safe for
// concurrent use; create one per goroutine.
type SpectralAnalyzer struct {
	sampleRate int
	fftSize    int
	window     []float64
	edges      BandEdges
	frame      []float64
}

// BandDensities holds the energy density of every band for one frame.
type BandDensities [numBands]float64

// NewSpectralAnalyzer creates a spectral analyzer for the given window size and
// sample rate.
func NewSpectralAnalyzer(fftSize, sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		sampleRate: sampleRate,
		fftSize:    fftSize,
		window:     HannWindow(fftSize),
		edges:      ComputeBandEdges(fftSize, sampleRate),
		frame:      make([]float64, fftSize),
	}
}

// FFTSize returns the analysis window size.
func (sa *SpectralAnalyzer) FFTSize() int {
	return sa.fftSize
}

// Edges returns the band edges used by the analyzer.
func (sa *SpectralAnalyzer) Edges() BandEdges {
	return sa.edges
}

// PowerSpectrum windows the chunk and returns squared magnitudes for bins
// 0..Nyquist-1. The chunk is centered in the analysis window.
func (sa *SpectralAnalyzer) PowerSpectrum(chunk []float32) []float64 {
	centerChunk(sa.frame, chunk)

	// Periodic Hann, applied by window position rather than sample position
	window.Apply(sa.frame, func(int) []float64 { return sa.window })

	spectrum := fft.FFTReal(sa.frame)

	power := make([]float64, sa.edges.Nyquist)
	for k := range power {
		re, im := real(spectrum[k]), imag(spectrum[k])
		power[k] = re*re + im*im
	}
	return power
}

// BandDensities returns the summed power of each band divided by its bin count.
func (sa *SpectralAnalyzer) BandDensities(chunk []float32) BandDensities {
	power := sa.PowerSpectrum(chunk)

	var energy [numBands]float64
	for k := 1; k < len(power); k++ {
		energy[sa.edges.BandOf(k)] += power[k]
	}

	var densities BandDensities
	for b := range numBands {
		densities[b] = energy[b] / float64(sa.edges.BinCount(b))
	}
	return densities
}

// ChunkColor returns the blended band color of a single chunk.
func (sa *SpectralAnalyzer) ChunkColor(chunk []float32) RGB {
	if len(chunk) == 0 {
		return NeutralColor
	}
	return BlendBandColors(sa.BandDensities(chunk))
}

// BlendBandColors mixes the reference band colors weighted by each band's
// share of the total density, then scales the result so its brightest channel
// is 0.85. Zero or non-finite total density yields NeutralColor.
func BlendBandColors(densities BandDensities) RGB {
	total := 0.0
	for _, d := range densities {
		total += d
	}
	if !(total > 0) {
		return NeutralColor
	}

	var mixed [3]float64
	for b := range numBands {
		share := densities[b] / total
		ref := bandTable[b].color
		for c := range mixed {
			mixed[c] += share * float64(ref[c])
		}
	}

	peak := max(mixed[0], mixed[1], mixed[2], 0.001)
	scale := brightnessTarget / peak

	var out RGB
	for c := range mixed {
		out[c] = float32(min(mixed[c]*scale, 1.0))
	}
	return out
}

// ComputeBandColors splits samples into n chunks the same way ExtractPeaks
// does and returns one blended band color per chunk. The result always has
// length n; empty input yields n neutral colors.
func ComputeBandColors(samples []float32, n, sampleRate int) []RGB {
	colors := make([]RGB, n)
	if len(samples) == 0 || n == 0 || sampleRate <= 0 {
		for i := range colors {
			colors[i] = NeutralColor
		}
		return colors
	}

	chunkSize := max(1, len(samples)/n)
	sa := NewSpectralAnalyzer(FFTSizeFor(chunkSize), sampleRate)

	for i := range n {
		start := i * chunkSize
		if start >= len(samples) {
			colors[i] = NeutralColor
			continue
		}
		end := min(start+chunkSize, len(samples))
		colors[i] = sa.ChunkColor(samples[start:end])
	}

	return colors
}
