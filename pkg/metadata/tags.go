package metadata

import (
	"slices"
	"strings"
)

// instrumentKeywords maps path substrings to tags, in output order.
var instrumentKeywords = []struct {
	keyword string
	tag     string
}{
	{"kick", "kick"},
	{"snare", "snare"},
	{"hihat", "hihat"},
	{"hi-hat", "hihat"},
	{"hi hat", "hihat"},
	{"hh_", "hihat"},
	{"_hh", "hihat"},
	{"clap", "clap"},
	{"cymbal", "cymbal"},
	{"crash", "crash"},
	{"ride", "ride"},
	{"open hat", "open hat"},
	{"closed hat", "closed hat"},
	{"bass", "bass"},
	{"sub", "sub bass"},
	{"lead", "lead"},
	{"pad", "pad"},
	{"pluck", "pluck"},
	{"chord", "chord"},
	{"arp", "arp"},
	{"vocal", "vocal"},
	{"vox", "vocal"},
	{"voice", "vocal"},
	{"fx", "fx"},
	{"sfx", "fx"},
	{"riser", "riser"},
	{"impact", "impact"},
	{"transition", "transition"},
	{"sweep", "sweep"},
	{"piano", "piano"},
	{"keys", "keys"},
	{"guitar", "guitar"},
	{"strings", "strings"},
	{"brass", "brass"},
	{"synth", "synth"},
	{"organ", "organ"},
	{"flute", "flute"},
	{"bell", "bell"},
	{"perc", "percussion"},
	{"percussion", "percussion"},
	{"tom", "tom"},
	{"shaker", "shaker"},
	{"tambourine", "tambourine"},
	{"rim", "rimshot"},
	{"808", "808"},
	{"top", "top loop"},
	{"fill", "fill"},
	{"break", "break"},
	{"groove", "groove"},
	{"melody", "melody"},
	{"melodic", "melodic"},
	{"drum", "drums"},
	{"drums", "drums"},
}

// Parent categories added when any member tag is present.
var categoryMembers = []struct {
	category string
	members  []string
}{
	{"drums", []string{
		"kick", "snare", "hihat", "clap", "cymbal", "crash", "ride",
		"open hat", "closed hat", "percussion", "tom", "shaker",
		"tambourine", "rimshot", "808", "top loop", "fill",
	}},
	{"melodic", []string{
		"piano", "keys", "guitar", "strings", "brass", "synth", "organ",
		"flute", "bell", "lead", "pad", "pluck", "chord", "arp", "melody",
	}},
	{"fx", []string{"fx", "riser", "impact", "transition", "sweep"}},
	{"bass", []string{"bass", "sub bass", "808"}},
}

// ParseTags derives instrument and category tags from a path and file name.
// Tags are unique and keep keyword table order, followed by any parent
// categories implied by them.
func ParseTags(path, name string) []string {
	combined := fold(path + " " + name)

	tags := make([]string, 0, 4)
	for _, kw := range instrumentKeywords {
		if strings.Contains(combined, kw.keyword) && !slices.Contains(tags, kw.tag) {
			tags = append(tags, kw.tag)
		}
	}

	for _, cat := range categoryMembers {
		if slices.Contains(tags, cat.category) {
			continue
		}
		if slices.ContainsFunc(tags, func(t string) bool { return slices.Contains(cat.members, t) }) {
			tags = append(tags, cat.category)
		}
	}

	return tags
}
