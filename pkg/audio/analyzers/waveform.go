package analyzers

// ExtractPeaks reduces samples to n absolute peak values normalized so the
// largest is 1.0. A silent buffer produces all zeros. Buffers shorter than n
// are padded with zeros after their absolute values.
func ExtractPeaks(samples []float32, n int) []float32 {
	peaks := make([]float32, n)
	if len(samples) == 0 || n == 0 {
		return peaks
	}

	if len(samples) < n {
		for i, s := range samples {
			peaks[i] = abs32(s)
		}
	} else {
		chunkSize := len(samples) / n
		for i := range n {
			start := i * chunkSize
			end := min(start+chunkSize, len(samples))

			var peak float32
			for _, s := range samples[start:end] {
				peak = max(peak, abs32(s))
			}
			peaks[i] = peak
		}
	}

	normalizePeaks(peaks)
	return peaks
}

// normalizePeaks scales peaks in place so the largest value is 1.0. All-zero
// input is left untouched.
func normalizePeaks(peaks []float32) {
	var maxPeak float32
	for _, p := range peaks {
		maxPeak = max(maxPeak, p)
	}
	if maxPeak <= 0 {
		return
	}
	for i := range peaks {
		peaks[i] /= maxPeak
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
