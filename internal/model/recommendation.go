package model

// Recommendation pairs a catalog movie with the human readable reason it
// was selected.  Score is zero for backfilled entries.
type Recommendation struct {
	Movie  Movie  `json:"movie"`
	Reason string `json:"reason"`
	Score  int    `json:"score"`
}
