// Package metadata infers musical metadata from sample file names and folder
// paths. Sample packs encode tempo, key, genre and instrument in names such as
// "Drums/Trap_Kick_140BPM_Cmin.wav"; these parsers recover them.
package metadata

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fold lowercases s for keyword matching. A Caser is stateful, so one is
// created per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// upperFirst uppercases the first rune of s and keeps the rest.
func upperFirst(s string) string {
	for i := range s {
		if i > 0 {
			return cases.Upper(language.Und).String(s[:i]) + s[i:]
		}
	}
	return cases.Upper(language.Und).String(s)
}
