package analyzers

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	// MinTempoBPM and MaxTempoBPM bound every tempo the detector reports.
	MinTempoBPM = 60
	MaxTempoBPM = 190

	// Autocorrelation search range. The lower bound is wider than the
	// reported range so halved candidates of fast material can still be found.
	searchMinBPM = 50
	searchMaxBPM = 190

	minTempoSeconds  = 2.0
	minEnergyFrames  = 20
	energyWindowSecs = 0.020
	energyHopSecs    = 0.010

	peakThreshold = 0.0005
	maxCandidates = 5

	preferredMinBPM   = 80
	preferredMaxBPM   = 160
	preferredWeight   = 1.3
	octavePenalty     = 0.8
	subharmonicRatio  = 0.7
	subharmonicMaxBPM = 95
)

// TempoCandidate is an autocorrelation peak.
type TempoCandidate struct {
	Lag         int
	Correlation float64
}

// TempoEstimate is the outcome of a successful tempo detection.
type TempoEstimate struct {
	BPM   int
	Score float64
	Lag   int
}

// onsetCurve holds the normalized onset strength envelope and its frame rate.
type onsetCurve struct {
	values       []float64
	framesPerSec float64
}

// DetectTempo estimates the tempo of samples in whole BPM. It reports false when
// the audio is too short, too quiet or not periodic enough to be confident.
func DetectTempo(samples []float32, sampleRate int) (int, bool) {
	est, ok := EstimateTempo(samples, sampleRate)
	if !ok {
		return 0, false
	}
	return est.BPM, true
}

// EstimateTempo runs the onset autocorrelation detector and returns the winning
// BPM along with its score and lag.
func EstimateTempo(samples []float32, sampleRate int) (TempoEstimate, bool) {
	if sampleRate <= 0 || float64(len(samples)) < float64(sampleRate)*minTempoSeconds {
		return TempoEstimate{}, false
	}

	curve, ok := computeOnsetCurve(samples, sampleRate)
	if !ok {
		return TempoEstimate{}, false
	}

	minLag := tempoLag(curve.framesPerSec, searchMaxBPM)
	maxLag := min(tempoLag(curve.framesPerSec, searchMinBPM), len(curve.values)/2)
	if minLag >= maxLag || maxLag >= len(curve.values) {
		return TempoEstimate{}, false
	}

	corr := autocorrelate(curve.values, minLag, maxLag)

	candidates := pickCandidates(corr, minLag, maxLag)
	if len(candidates) == 0 {
		return TempoEstimate{}, false
	}

	best, bestScore, bestLag := resolveOctave(candidates, curve.framesPerSec)
	if best == 0 {
		return TempoEstimate{}, false
	}

	if doubled, ok := subharmonicDouble(best, bestScore, corr, curve.framesPerSec, minLag, maxLag); ok {
		best = doubled
		bestLag = tempoLag(curve.framesPerSec, float64(doubled))
	}

	if best < MinTempoBPM || best > MaxTempoBPM || !(bestScore > peakThreshold) {
		return TempoEstimate{}, false
	}

	return TempoEstimate{BPM: best, Score: bestScore, Lag: bestLag}, true
}

// computeOnsetCurve builds the half-wave rectified log-energy difference,
// normalized by its maximum.
func computeOnsetCurve(samples []float32, sampleRate int) (onsetCurve, bool) {
	windowSize := int(float64(sampleRate) * energyWindowSecs)
	hopSize := int(float64(sampleRate) * energyHopSecs)
	if windowSize <= 0 || hopSize <= 0 || len(samples) < windowSize {
		return onsetCurve{}, false
	}

	energy := energyEnvelope(samples, windowSize, hopSize)
	if len(energy) < minEnergyFrames {
		return onsetCurve{}, false
	}

	onset := onsetStrength(energy)

	maxOnset := floats.Max(onset)
	if !(maxOnset > 0) {
		return onsetCurve{}, false
	}
	floats.Scale(1/maxOnset, onset)

	return onsetCurve{
		values:       onset,
		framesPerSec: float64(sampleRate) / float64(hopSize),
	}, true
}

// energyEnvelope returns the mean squared amplitude of every full window.
func energyEnvelope(samples []float32, windowSize, hopSize int) []float64 {
	wide := widen(samples)
	frames := (len(samples)-windowSize)/hopSize + 1
	energy := make([]float64, frames)
	for i := range frames {
		window := wide[i*hopSize : i*hopSize+windowSize]
		energy[i] = floats.Dot(window, window) / float64(windowSize)
	}
	return energy
}

// onsetStrength returns the positive part of the first difference of the
// log-compressed energy. The first frame is 0.
func onsetStrength(energy []float64) []float64 {
	onset := make([]float64, len(energy))
	prev := math.Log(energy[0] + 1e-10)
	for i := 1; i < len(energy); i++ {
		cur := math.Log(energy[i] + 1e-10)
		onset[i] = max(cur-prev, 0)
		prev = cur
	}
	return onset
}

// tempoLag converts a tempo into an onset frame lag.
func tempoLag(framesPerSec, bpm float64) int {
	return int(math.Round(framesPerSec * 60.0 / bpm))
}

// lagToBPM converts an onset frame lag into a fractional tempo.
func lagToBPM(framesPerSec float64, lag int) float64 {
	return framesPerSec * 60.0 / float64(lag)
}

// autocorrelate returns corr where corr[lag] is the mean product of x with
// itself shifted by lag, for lag in [minLag, maxLag]. Entries below minLag are
// left at zero.
func autocorrelate(x []float64, minLag, maxLag int) []float64 {
	corr := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		n := len(x) - lag
		if n <= 0 {
			continue
		}
		corr[lag] = floats.Dot(x[:n], x[lag:lag+n]) / float64(n)
	}
	return corr
}

// pickCandidates returns up to maxCandidates local maxima of corr inside
// (minLag, maxLag), strongest first. When no local maximum clears the
// threshold the global maximum over [minLag, maxLag] is used instead.
func pickCandidates(corr []float64, minLag, maxLag int) []TempoCandidate {
	var peaks []TempoCandidate
	for lag := minLag + 1; lag < maxLag; lag++ {
		c := corr[lag]
		if c > corr[lag-1] && c > corr[lag+1] && c > peakThreshold {
			peaks = append(peaks, TempoCandidate{Lag: lag, Correlation: c})
		}
	}

	if len(peaks) == 0 {
		best := minLag
		for lag := minLag; lag <= maxLag; lag++ {
			if corr[lag] > corr[best] {
				best = lag
			}
		}
		if !(corr[best] > peakThreshold) {
			return nil
		}
		return []TempoCandidate{{Lag: best, Correlation: corr[best]}}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Correlation > peaks[j].Correlation
	})
	if len(peaks) > maxCandidates {
		peaks = peaks[:maxCandidates]
	}
	return peaks
}

// resolveOctave scores the octave variants of every candidate and returns the
// best tempo, its score and the lag of the candidate it came from. A zero tempo
// means no variant fell inside the reportable range.
func resolveOctave(candidates []TempoCandidate, framesPerSec float64) (int, float64, int) {
	best, bestScore, bestLag := 0, 0.0, 0
	for _, cand := range candidates {
		raw := lagToBPM(framesPerSec, cand.Lag)
		for _, variant := range OctaveCandidates(raw) {
			score := ScoreCandidate(variant, raw, cand.Correlation)
			if score > bestScore {
				best, bestScore, bestLag = variant, score, cand.Lag
			}
		}
	}
	return best, bestScore, bestLag
}

// OctaveCandidates returns the raw, doubled and halved tempo of raw, rounded to
// whole BPM and restricted to the reportable range. Variants keep that order.
func OctaveCandidates(raw float64) []int {
	variants := make([]int, 0, 3)
	for _, v := range []float64{raw, raw * 2, raw / 2} {
		bpm := int(math.Round(v))
		if bpm >= MinTempoBPM && bpm <= MaxTempoBPM {
			variants = append(variants, bpm)
		}
	}
	return variants
}

// ScoreCandidate weighs the correlation of a peak for one of its octave
// variants. Tempos in the common 80-160 range get a boost and variants that
// moved away from the raw tempo are penalized.
func ScoreCandidate(variant int, raw, correlation float64) float64 {
	weight := 1.0
	if variant >= preferredMinBPM && variant <= preferredMaxBPM {
		weight = preferredWeight
	}
	penalty := 1.0
	if math.Abs(float64(variant)-raw) >= 1.0 {
		penalty = octavePenalty
	}
	return correlation * weight * penalty
}

// subharmonicDouble reports whether a slow winner should be replaced by its
// double because the doubled lag correlates nearly as well.
func subharmonicDouble(bpm int, score float64, corr []float64, framesPerSec float64, minLag, maxLag int) (int, bool) {
	if bpm <= 0 || bpm > subharmonicMaxBPM {
		return 0, false
	}
	doubled := bpm * 2
	if doubled > MaxTempoBPM {
		return 0, false
	}
	lag := tempoLag(framesPerSec, float64(doubled))
	if lag < minLag || lag > maxLag {
		return 0, false
	}
	if corr[lag] >= score*subharmonicRatio {
		return doubled, true
	}
	return 0, false
}
