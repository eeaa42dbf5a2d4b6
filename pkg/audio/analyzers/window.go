package analyzers

import "math"

const (
	// MaxFFTSize caps the analysis window of the band colorizer.
	MaxFFTSize = 2048
	// MinFFTSize is the smallest analysis window of the band colorizer.
	MinFFTSize = 64
)

// NextPowerOfTwo returns the smallest power of two >= n. It returns 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFTSizeFor returns the FFT window used for chunks of chunkSize samples:
// the next power of two of the chunk, kept within [MinFFTSize, MaxFFTSize].
func FFTSizeFor(chunkSize int) int {
	return min(MaxFFTSize, max(MinFFTSize, NextPowerOfTwo(chunkSize)))
}

// HannWindow returns a periodic Hann window of length n,
// w[i] = 0.5 * (1 - cos(2*pi*i/n)).
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range n {
		w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n)))
	}
	return w
}

// centerChunk copies chunk into frame, zeroing the rest of frame first.
// A chunk longer than the frame contributes its centered sub-range; a shorter
// chunk is placed in the middle of the frame with zero padding on both sides.
func centerChunk(frame []float64, chunk []float32) {
	for i := range frame {
		frame[i] = 0
	}

	size := len(frame)
	copyLen := min(len(chunk), size)

	srcOffset := 0
	if len(chunk) > size {
		srcOffset = (len(chunk) - size) / 2
	}
	dstOffset := 0
	if copyLen < size {
		dstOffset = (size - copyLen) / 2
	}

	for j := range copyLen {
		frame[dstOffset+j] = float64(chunk[srcOffset+j])
	}
}
