// SPDX-License-Identifier: MIT
package effect

import "strings"

// DefaultEffectID is the recommendation fallback for unrecognized genres.
const DefaultEffectID = "particle-burst"

// genreTable maps lowercase genre keywords to the effect that suits the
// genre's typical energy profile. Matching is substring-based so entries
// like "indie rock" and "progressive rock" both land on the rock row.
var genreTable = []struct {
	keyword string
	effect  string
}{
	{"metal", "particle-burst"},
	{"rock", "particle-burst"},
	{"punk", "particle-burst"},
	{"edm", "spectrum-bars"},
	{"electro", "spectrum-bars"},
	{"techno", "spectrum-bars"},
	{"house", "spectrum-bars"},
	{"dance", "spectrum-bars"},
	{"hip hop", "spectrum-bars"},
	{"hip-hop", "spectrum-bars"},
	{"rap", "spectrum-bars"},
	{"ambient", "aurora"},
	{"chill", "aurora"},
	{"classical", "aurora"},
	{"jazz", "plasma"},
	{"blues", "plasma"},
	{"soul", "plasma"},
	{"funk", "plasma"},
	{"pop", "starfield"},
	{"synth", "starfield"},
	{"indie", "starfield"},
	{"folk", "lyric-rise"},
	{"acoustic", "lyric-rise"},
	{"ballad", "lyric-rise"},
	{"singer", "lyric-rise"},
}

// RecommendForGenre picks an effect id for a free-form genre string.
// Unknown genres fall back to DefaultEffectID.
func RecommendForGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if g == "" {
		return DefaultEffectID
	}
	for _, row := range genreTable {
		if strings.Contains(g, row.keyword) {
			return row.effect
		}
	}
	return DefaultEffectID
}
