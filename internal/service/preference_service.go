package service

import (
	"context"
	"strings"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/repository"
)

// PreferenceService reads and writes user preferences.  A default row is
// created on first access.
type PreferenceService struct {
	prefs PreferencesStore
	recs  *RecommendationService
}

// NewPreferenceService wires the store.  recs, when set, has its cache
// invalidated after every update.
func NewPreferenceService(prefs PreferencesStore, recs *RecommendationService) *PreferenceService {
	return &PreferenceService{prefs: prefs, recs: recs}
}

// Get returns the user's preferences, creating an empty row if needed.
func (s *PreferenceService) Get(ctx context.Context, userID uint64) (model.Preferences, error) {
	prefs, found, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return model.Preferences{}, err
	}
	if found {
		return prefs, nil
	}
	prefs = model.Preferences{UserID: userID}
	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return model.Preferences{}, err
	}
	return s.reload(ctx, prefs)
}

// Update applies patch and stores the result.
func (s *PreferenceService) Update(ctx context.Context, userID uint64, patch model.PreferencesPatch) (model.Preferences, error) {
	if patch.MinRating != nil && (*patch.MinRating < 0 || *patch.MinRating > 10) {
		return model.Preferences{}, repository.Fail(repository.ErrInvalidInput, "min_rating must be between 0 and 10")
	}
	for _, f := range []**string{&patch.FavoriteGenres, &patch.FavoriteDirectors, &patch.FavoriteActors, &patch.PreferredDecades} {
		if *f != nil {
			v := normalizeTokens(**f)
			*f = &v
		}
	}
	prefs, found, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return model.Preferences{}, err
	}
	if !found {
		prefs = model.Preferences{UserID: userID}
	}
	prefs.Apply(patch)
	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return model.Preferences{}, err
	}
	if s.recs != nil {
		s.recs.InvalidateUser(ctx, userID)
	}
	return s.reload(ctx, prefs)
}

// reload re-reads prefs so timestamps reflect the store.  The written value
// is returned if the row cannot be read back.
func (s *PreferenceService) reload(ctx context.Context, written model.Preferences) (model.Preferences, error) {
	stored, found, err := s.prefs.Get(ctx, written.UserID)
	if err != nil {
		return model.Preferences{}, err
	}
	if !found {
		return written, nil
	}
	return stored, nil
}

// normalizeTokens rewrites a comma separated list as "a, b, c".
func normalizeTokens(s string) string {
	return strings.Join(model.SplitTokens(s), ", ")
}
