package model

import "time"

// Preferences belongs to exactly one user and drives recommendation
// scoring.  The favorite lists are comma separated tokens; MinRating of 0
// means no rating floor.  PreferredDecades is stored but not scored.
type Preferences struct {
	UserID            uint64    `json:"user_id"`
	FavoriteGenres    string    `json:"favorite_genres"`
	FavoriteDirectors string    `json:"favorite_directors"`
	FavoriteActors    string    `json:"favorite_actors"`
	MinRating         int       `json:"min_rating"`
	PreferredDecades  string    `json:"preferred_decades"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (p Preferences) Genres() []string    { return SplitTokens(p.FavoriteGenres) }
func (p Preferences) Directors() []string { return SplitTokens(p.FavoriteDirectors) }
func (p Preferences) Actors() []string    { return SplitTokens(p.FavoriteActors) }

// PreferencesPatch carries optional updates; nil fields are left untouched.
type PreferencesPatch struct {
	FavoriteGenres    *string
	FavoriteDirectors *string
	FavoriteActors    *string
	MinRating         *int
	PreferredDecades  *string
}

// Apply copies the set fields of patch onto p.
func (p *Preferences) Apply(patch PreferencesPatch) {
	if patch.FavoriteGenres != nil {
		p.FavoriteGenres = *patch.FavoriteGenres
	}
	if patch.FavoriteDirectors != nil {
		p.FavoriteDirectors = *patch.FavoriteDirectors
	}
	if patch.FavoriteActors != nil {
		p.FavoriteActors = *patch.FavoriteActors
	}
	if patch.MinRating != nil {
		p.MinRating = *patch.MinRating
	}
	if patch.PreferredDecades != nil {
		p.PreferredDecades = *patch.PreferredDecades
	}
}
