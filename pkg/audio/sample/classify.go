package sample

import (
	"strings"
	"time"
)

const (
	// Samples shorter than this are one-shots regardless of content.
	OneShotMaxDuration = 1500 * time.Millisecond
	// Longer samples are never probed for a silent tail.
	SilenceProbeMaxDuration = 20 * time.Second
)

var loopKeywords = []string{"loop", "_lp"}

var oneShotKeywords = []string{
	"oneshot", "one-shot", "one shot", "_hit", " hit", "stab", "impact",
	"riser", "downlifter", "fx", "sfx", "transition", "fill",
}

// ClassifyType decides whether a sample is a loop or a one-shot. Filename
// keywords win, then duration: short files are one-shots and mid-length files
// are one-shots when probe reports a silent tail. probe is only called when
// needed and may be nil. known is false when the duration could not be
// determined.
func ClassifyType(name string, duration time.Duration, known bool, probe func() bool) Type {
	lower := strings.ToLower(name)

	for _, kw := range loopKeywords {
		if strings.Contains(lower, kw) {
			return TypeLoop
		}
	}
	for _, kw := range oneShotKeywords {
		if strings.Contains(lower, kw) {
			return TypeOneShot
		}
	}

	if !known {
		return TypeOneShot
	}
	if duration < OneShotMaxDuration {
		return TypeOneShot
	}
	if duration <= SilenceProbeMaxDuration && probe != nil && probe() {
		return TypeOneShot
	}
	return TypeLoop
}
