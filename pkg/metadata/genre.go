package metadata

import "strings"

type genreRule struct {
	keywords []string
	genre    string
}

// genreTable is checked in order; the first keyword found in the path wins.
var genreTable = []genreRule{
	{[]string{"hip hop", "hiphop", "hip-hop", "boom bap", "boom-bap"}, "Hip Hop"},
	{[]string{"trap"}, "Trap"},
	{[]string{"drill"}, "Drill"},
	{[]string{"house", "deep house", "tech house"}, "House"},
	{[]string{"techno"}, "Techno"},
	{[]string{"edm", "electro"}, "Electronic"},
	{[]string{"dubstep", "dub step"}, "Dubstep"},
	{[]string{"dnb", "drum and bass", "drum & bass", "drum n bass"}, "DnB"},
	{[]string{"pop"}, "Pop"},
	{[]string{"rnb", "r&b", "r'n'b"}, "R&B"},
	{[]string{"lo-fi", "lofi", "lo fi"}, "Lo-Fi"},
	{[]string{"ambient"}, "Ambient"},
	{[]string{"jazz"}, "Jazz"},
	{[]string{"soul"}, "Soul"},
	{[]string{"funk"}, "Funk"},
	{[]string{"reggae", "dancehall", "reggaeton"}, "Reggae"},
	{[]string{"rock", "indie"}, "Rock"},
	{[]string{"latin", "salsa", "bossa"}, "Latin"},
	{[]string{"afro", "afrobeat"}, "Afrobeat"},
	{[]string{"cinematic", "film", "orchestral"}, "Cinematic"},
	{[]string{"future bass", "future-bass"}, "Future Bass"},
	{[]string{"trance"}, "Trance"},
	{[]string{"garage", "uk garage"}, "Garage"},
}

// ParseGenre guesses a genre from any part of a sample's path.
func ParseGenre(path string) (string, bool) {
	lower := fold(path)
	for _, rule := range genreTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.genre, true
			}
		}
	}
	return "", false
}

// Genres returns every genre ParseGenre can report, in table order.
func Genres() []string {
	genres := make([]string, len(genreTable))
	for i, rule := range genreTable {
		genres[i] = rule.genre
	}
	return genres
}
