package analyzers

import "math"

// RGB is a color with channels in [0, 1].
type RGB [3]float32

// Band identifies one of the five frequency bands used for coloring.
type Band int

const (
	BandSub Band = iota
	BandLowMid
	BandMid
	BandHighMid
	BandHigh
	numBands
)

// NeutralColor is emitted for chunks without measurable spectral energy.
var NeutralColor = RGB{0.4, 0.4, 0.6}

// brightnessTarget is the value the brightest channel of a blended color is
// scaled to.
const brightnessTarget = 0.85

type bandSpec struct {
	name    string
	upperHz float64 // 0 means Nyquist
	color   RGB
}

// bandTable is the single source of band boundaries and reference colors.
// Changing it changes persisted waveform colors, so bump the analysis version
// in package sample along with it.
var bandTable = [numBands]bandSpec{
	BandSub:     {name: "sub", upperHz: 150, color: RGB{0.95, 0.10, 0.10}},
	BandLowMid:  {name: "low_mid", upperHz: 600, color: RGB{0.95, 0.75, 0.10}},
	BandMid:     {name: "mid", upperHz: 2500, color: RGB{0.15, 0.90, 0.20}},
	BandHighMid: {name: "high_mid", upperHz: 6000, color: RGB{0.10, 0.70, 0.90}},
	BandHigh:    {name: "high", upperHz: 0, color: RGB{0.20, 0.30, 0.95}},
}

// String returns the band name.
func (b Band) String() string {
	if b < 0 || b >= numBands {
		return "unknown"
	}
	return bandTable[b].name
}

// Color returns the reference color of the band.
func (b Band) Color() RGB {
	if b < 0 || b >= numBands {
		return NeutralColor
	}
	return bandTable[b].color
}

// UpperHz returns the upper boundary of the band in Hz, 0 for the open-ended
// top band.
func (b Band) UpperHz() float64 {
	if b < 0 || b >= numBands {
		return 0
	}
	return bandTable[b].upperHz
}

// Bands returns all bands from lowest to highest.
func Bands() []Band {
	return []Band{BandSub, BandLowMid, BandMid, BandHighMid, BandHigh}
}

// BandEdges holds the exclusive upper FFT bin of each band. Bin 0 (DC) is never
// part of any band and the last band ends at Nyquist.
type BandEdges struct {
	FFTSize int
	Nyquist int
	// Ends[b] is the first bin past band b. Ends[BandHigh] == Nyquist.
	Ends [numBands]int
}

// ComputeBandEdges maps the band table onto FFT bins for the given window size
// and sample rate. Edges are strictly increasing where the bin count allows,
// never exceed Nyquist, and the sub band always starts at bin 1.
func ComputeBandEdges(fftSize, sampleRate int) BandEdges {
	nyquist := fftSize / 2
	edges := BandEdges{FFTSize: fftSize, Nyquist: nyquist}

	toBin := func(hz float64) int {
		return int(math.Round(hz * float64(fftSize) / float64(sampleRate)))
	}

	prev := 0
	for b := BandSub; b < BandHigh; b++ {
		end := toBin(bandTable[b].upperHz)
		if b == BandSub {
			end = max(end, 1)
		} else {
			end = max(end, prev+1)
		}
		end = min(end, nyquist)
		edges.Ends[b] = end
		prev = end
	}
	edges.Ends[BandHigh] = nyquist

	return edges
}

// Start returns the first bin of band b.
func (e BandEdges) Start(b Band) int {
	if b == BandSub {
		return 1
	}
	return e.Ends[b-1]
}

// BinCount returns the number of bins used to normalize band b's energy into a
// density. It is floored at 1 so empty bands never divide by zero.
func (e BandEdges) BinCount(b Band) int {
	return max(e.Ends[b]-e.Start(b), 1)
}

// BandOf returns the band bin k belongs to. k is expected in [1, Nyquist).
func (e BandEdges) BandOf(k int) Band {
	for b := BandSub; b < BandHigh; b++ {
		if k < e.Ends[b] {
			return b
		}
	}
	return BandHigh
}
