package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cargarn1/MovieFan/internal/model"
)

type PreferencesRepo struct{ DB *sql.DB }

func NewPreferencesRepo(db *sql.DB) *PreferencesRepo { return &PreferencesRepo{DB: db} }

// Get returns the user's preferences.  found is false when no row exists,
// which is distinct from a row whose lists are all empty.
func (r *PreferencesRepo) Get(ctx context.Context, userID uint64) (prefs model.Preferences, found bool, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT user_id, favorite_genres, favorite_directors, favorite_actors, min_rating, preferred_decades, created_at, updated_at
		 FROM user_preferences WHERE user_id=?`, userID).
		Scan(&prefs.UserID, &prefs.FavoriteGenres, &prefs.FavoriteDirectors, &prefs.FavoriteActors,
			&prefs.MinRating, &prefs.PreferredDecades, &prefs.CreatedAt, &prefs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}, false, nil
	}
	if err != nil {
		return model.Preferences{}, false, fmt.Errorf("query preferences: %w", err)
	}
	return prefs, true, nil
}

// Upsert writes every field of prefs.
func (r *PreferencesRepo) Upsert(ctx context.Context, prefs model.Preferences) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, favorite_genres, favorite_directors, favorite_actors, min_rating, preferred_decades)
		 VALUES (?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		   favorite_genres=VALUES(favorite_genres),
		   favorite_directors=VALUES(favorite_directors),
		   favorite_actors=VALUES(favorite_actors),
		   min_rating=VALUES(min_rating),
		   preferred_decades=VALUES(preferred_decades)`,
		prefs.UserID, prefs.FavoriteGenres, prefs.FavoriteDirectors, prefs.FavoriteActors,
		prefs.MinRating, prefs.PreferredDecades)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
