package model

import (
	"math"
	"strconv"
	"strings"
)

// Movie is a catalog entry.  Genre and Cast are comma separated lists kept
// as text so that preference tokens can be matched by substring.  Rating is
// the external (IMDb style) score stored as text, e.g. "8.8"; it may be
// empty or unparseable.
type Movie struct {
	ID            uint64 `json:"id"`                       // movies.id
	Title         string `json:"title"`                    // movies.title
	Year          *int   `json:"year,omitempty"`           // movies.year (nullable)
	Genre         string `json:"genre"`                    // movies.genre
	Director      string `json:"director"`                 // movies.director
	Cast          string `json:"cast"`                     // movies.cast_list
	Plot          string `json:"plot,omitempty"`           // movies.plot
	Rating        string `json:"imdb_rating"`              // movies.imdb_rating
	AverageRating string `json:"average_rating,omitempty"` // movies.average_rating, maintained by the review subsystem
}

// ParsedRating returns the numeric rating and whether Rating parsed to a
// finite number.  "NaN" and "Inf" count as unparseable.
func (m Movie) ParsedRating() (float64, bool) {
	r, err := strconv.ParseFloat(strings.TrimSpace(m.Rating), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// SplitTokens splits a comma separated field into trimmed, non-empty tokens.
func SplitTokens(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
