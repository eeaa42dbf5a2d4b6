package analyzers

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	silenceChunkSecs   = 0.1
	silenceMinChunks   = 5
	silenceTailStart   = 0.7
	silenceThreshold   = 0.03
	silenceTailRatio   = 0.6
	silenceDecayFactor = 0.1
)

// HasTrailingSilence reports whether the sound decays into silence, the
// signature of a one-shot. The buffer is split into 100 ms RMS chunks. It is
// true when more than 60% of the chunks in the last 30% sit below 3% of the
// peak RMS, or when the loudest chunk of the back half is under 10% of the
// loudest chunk of the front half.
func HasTrailingSilence(samples []float32, sampleRate int) bool {
	chunkSize := sampleRate / 10
	if chunkSize <= 0 {
		return false
	}

	energies := RMSChunks(samples, chunkSize)
	if len(energies) < silenceMinChunks {
		return false
	}

	peak := floats.Max(energies)
	if !(peak > 0) {
		return false
	}

	// at least 5 chunks, so both halves are non-empty
	half := len(energies) / 2
	frontPeak := floats.Max(energies[:half])
	backPeak := floats.Max(energies[half:])
	if !(frontPeak > 0) {
		return false
	}

	tailStart := int(float64(len(energies)) * silenceTailStart)
	tail := energies[tailStart:]
	threshold := peak * silenceThreshold
	quiet := 0
	for _, e := range tail {
		if e < threshold {
			quiet++
		}
	}
	if len(tail) > 0 && float64(quiet)/float64(len(tail)) > silenceTailRatio {
		return true
	}

	return backPeak < frontPeak*silenceDecayFactor
}

// RMSChunks returns the root mean square of every complete chunk of chunkSize
// samples. A trailing partial chunk is dropped.
func RMSChunks(samples []float32, chunkSize int) []float64 {
	if chunkSize <= 0 {
		return nil
	}
	wide := widen(samples)
	count := len(samples) / chunkSize
	out := make([]float64, count)
	for i := range count {
		chunk := wide[i*chunkSize : (i+1)*chunkSize]
		out[i] = math.Sqrt(floats.Dot(chunk, chunk) / float64(chunkSize))
	}
	return out
}

// widen converts samples to float64 for the gonum routines
func widen(samples []float32) []float64 {
	wide := make([]float64, len(samples))
	for i, s := range samples {
		wide[i] = float64(s)
	}
	return wide
}
