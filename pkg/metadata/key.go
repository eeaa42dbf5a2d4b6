package metadata

import (
	"regexp"
	"strings"
)

// Underscores count as separators, so "Loop_Cmin_120" parses like "Loop Cmin 120".
var (
	keyWithQuality = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])([A-G][#b]?)\s*(maj(?:or)?|min(?:or)?)(?:[^a-z]|$)`)
	keyShortMinor  = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([A-G][#b]?)m(?:[^A-Za-z]|$)`)
)

// ParseKey extracts a musical key from a file name and returns it as note plus
// "maj" or "min", e.g. "C#min" or "Bbmaj". "A minor", "Cmaj" and the short
// minor form "F#m" are recognized.
func ParseKey(name string) (string, bool) {
	if m := keyWithQuality.FindStringSubmatch(name); m != nil {
		quality := "maj"
		if strings.HasPrefix(fold(m[2]), "min") {
			quality = "min"
		}
		return upperFirst(m[1]) + quality, true
	}

	if m := keyShortMinor.FindStringSubmatch(name); m != nil {
		return upperFirst(m[1]) + "min", true
	}

	return "", false
}
