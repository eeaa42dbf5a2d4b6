package analyzers

import (
	"math"
	"math/rand"
)

// clickTrack returns seconds of silence with a 10 ms full-scale click every beat.
func clickTrack(bpm float64, seconds float64, sampleRate int) []float32 {
	samples := make([]float32, int(seconds*float64(sampleRate)))
	period := int(math.Round(60.0 / bpm * float64(sampleRate)))
	clickLen := sampleRate / 100
	for start := 0; start < len(samples); start += period {
		for j := 0; j < clickLen && start+j < len(samples); j++ {
			samples[start+j] = 0.8
		}
	}
	return samples
}

func sine(freq, seconds float64, sampleRate int, amp float64) []float32 {
	samples := make([]float32, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return samples
}

// decayingHit is a short noise burst followed by silence.
func decayingHit(seconds float64, sampleRate int) []float32 {
	samples := make([]float32, int(seconds*float64(sampleRate)))
	rng := rand.New(rand.NewSource(7))
	hit := sampleRate / 20
	for i := 0; i < hit && i < len(samples); i++ {
		env := 1.0 - float64(i)/float64(hit)
		samples[i] = float32((rng.Float64()*2 - 1) * env)
	}
	return samples
}

func whiteNoise(n int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(rng.Float64()*2-1) * 0.5
	}
	return samples
}
