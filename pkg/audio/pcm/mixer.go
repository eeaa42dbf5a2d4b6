package pcm

// monoMixer folds interleaved multi-channel frames into mono by arithmetic
// mean and stops accepting frames once the frame cap is reached.
type monoMixer struct {
	channels int
	limit    int // 0 means unlimited
	samples  []float32
}

// newMonoMixer creates a mixer capped at maxSeconds of audio. sizeHint is the
// expected total frame count, 0 when unknown.
func newMonoMixer(channels, sampleRate int, maxSeconds float64, sizeHint int) *monoMixer {
	m := &monoMixer{channels: max(channels, 1)}
	if maxSeconds > 0 {
		m.limit = max(int(maxSeconds*float64(sampleRate)), 1)
	}

	capacity := sizeHint
	if m.limit > 0 && (capacity <= 0 || capacity > m.limit) {
		capacity = m.limit
	}
	if capacity > 0 {
		m.samples = make([]float32, 0, capacity)
	}
	return m
}

// full reports whether the cap has been reached.
func (m *monoMixer) full() bool {
	return m.limit > 0 && len(m.samples) >= m.limit
}

// addFrame appends one mono sample computed from the sum of a frame's channels.
func (m *monoMixer) addFrame(channelSum float64) bool {
	if m.full() {
		return false
	}
	m.samples = append(m.samples, float32(channelSum/float64(m.channels)))
	return true
}

// addInterleaved mixes complete frames of interleaved data, scaling every value
// with toFloat. Trailing values that do not form a whole frame are ignored.
// It returns false once the cap is reached.
func (m *monoMixer) addInterleaved(data []int, toFloat func(int) float64) bool {
	frames := len(data) / m.channels
	for i := range frames {
		sum := 0.0
		for ch := range m.channels {
			sum += toFloat(data[i*m.channels+ch])
		}
		if !m.addFrame(sum) {
			return false
		}
	}
	return !m.full()
}
