package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Tempo bounds accepted from file names.
const (
	MinBPM = 60
	MaxBPM = 190
)

// Explicit tempo markers, tried in order.
var bpmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{2,3})\s*[_\-]?\s*bpm`),   // 120BPM, 120 bpm, 120_bpm
	regexp.MustCompile(`(?i)bpm[\s_\-]*(\d{2,3})`),       // bpm120, BPM_120
	regexp.MustCompile(`(?i)tempo[\s_\-]*(\d{2,3})`),     // Tempo 120
	regexp.MustCompile(`(?i)(\d{2,3})\s*[_\-]?\s*tempo`), // 120_Tempo
}

// standaloneNumber matches a 2-3 digit number between non-alphanumerics.
var standaloneNumber = regexp.MustCompile(`(?:^|[^0-9a-zA-Z])(\d{2,3})(?:[^0-9a-zA-Z]|$)`)

// unitSuffixes mark numbers that describe something other than tempo.
var unitSuffixes = map[string]bool{
	"bit": true, "bits": true,
	"bar": true, "bars": true,
	"hz": true, "khz": true,
	"db": true, "ch": true, "st": true,
	"kbps": true,
}

// ParseBPM extracts a tempo from a file name. Explicit markers such as
// "120bpm" or "tempo 120" win; otherwise the first standalone number in range
// that is not a unit like "24 bit" or "8 bars" is used.
func ParseBPM(name string) (int, bool) {
	for _, re := range bpmPatterns {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if bpm, ok := bpmInRange(m[1]); ok {
			return bpm, true
		}
	}

	for _, loc := range standaloneNumber.FindAllStringSubmatchIndex(name, -1) {
		bpm, ok := bpmInRange(name[loc[2]:loc[3]])
		if !ok {
			continue
		}
		if unitSuffixes[followingWord(name[loc[3]:])] {
			continue
		}
		return bpm, true
	}

	return 0, false
}

func bpmInRange(digits string) (int, bool) {
	bpm, err := strconv.Atoi(digits)
	if err != nil || bpm < MinBPM || bpm > MaxBPM {
		return 0, false
	}
	return bpm, true
}

// followingWord skips spaces, underscores and dashes and returns the lowercased
// run of letters that follows.
func followingWord(s string) string {
	s = strings.TrimLeft(s, " \t_-")
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(s)
	}
	return fold(s[:end])
}
