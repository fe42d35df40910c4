package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/repository"
)

// Recommendation list bounds.
const (
	DefaultRecommendationLimit = 10
	DefaultSimilarLimit        = 5
	MaxRecommendationLimit     = 50
)

// Score weights.
const (
	genreWeight    = 3
	directorWeight = 5
	actorWeight    = 4
	ratingWeight   = 2

	highRatingThreshold = 7.0
)

const (
	defaultReason  = "Based on your preferences"
	popularReason  = "Popular choice"
	maxReasonParts = 2
)

// RoomMovies reports the movies a user already has rooms for.
type RoomMovies interface {
	MemberMovieIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// RecommendationService ranks catalog movies against a user's preferences.
// It only reads; a slightly stale membership view is acceptable.
type RecommendationService struct {
	movies MovieCatalog
	prefs  PreferencesStore
	rooms  RoomMovies
	cache  RecommendationCache
}

// NewRecommendationService builds the engine.  cache may be nil.
func NewRecommendationService(movies MovieCatalog, prefs PreferencesStore, rooms RoomMovies, cache RecommendationCache) *RecommendationService {
	s := &RecommendationService{movies: movies, prefs: prefs, rooms: rooms}
	// A typed nil pointer must not end up in the interface.
	if c, ok := cache.(*RedisRecommendationCache); !ok || c != nil {
		s.cache = cache
	}
	return s
}

// Recommend returns up to limit movies for userID, best first.  Preference
// matches come first; the remainder is backfilled with the highest rated
// eligible movies.
func (s *RecommendationService) Recommend(ctx context.Context, userID uint64, limit int) ([]model.Recommendation, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	if s.cache != nil {
		if recs, ok := s.cache.Get(ctx, userID, limit); ok {
			return recs, nil
		}
	}

	movieIDs, err := s.rooms.MemberMovieIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("member movies: %w", err)
	}
	excluded := make(map[uint64]bool, len(movieIDs))
	for _, id := range movieIDs {
		excluded[id] = true
	}
	catalog, err := s.movies.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	prefs, found, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	recs := make([]model.Recommendation, 0, limit)
	if found {
		recs = scoreCandidates(catalog, prefs, excluded, limit)
	}
	if len(recs) < limit {
		for _, r := range recs {
			excluded[r.Movie.ID] = true
		}
		recs = append(recs, backfill(catalog, excluded, limit-len(recs))...)
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, limit, recs)
	}
	return recs, nil
}

// inPool reports whether m passes the preference pre-filter: for each
// non-empty preference list, one of its tokens must occur in the matching
// field.
func inPool(m model.Movie, genres, directors, actors []string) bool {
	if len(genres) > 0 && firstMatch(m.Genre, genres) == "" {
		return false
	}
	if len(directors) > 0 && firstMatch(m.Director, directors) == "" {
		return false
	}
	if len(actors) > 0 && firstMatch(m.Cast, actors) == "" {
		return false
	}
	return true
}

// firstMatch returns the first token contained in field, ignoring case.
func firstMatch(field string, tokens []string) string {
	if field == "" {
		return ""
	}
	for _, t := range tokens {
		if model.ContainsFold(field, t) {
			return t
		}
	}
	return ""
}

func scoreCandidates(catalog []model.Movie, prefs model.Preferences, excluded map[uint64]bool, limit int) []model.Recommendation {
	genres, directors, actors := prefs.Genres(), prefs.Directors(), prefs.Actors()
	scored := make([]model.Recommendation, 0)
	for _, m := range catalog {
		if excluded[m.ID] || !inPool(m, genres, directors, actors) {
			continue
		}
		score := 0
		var reasons []string
		if g := firstMatch(m.Genre, genres); g != "" {
			score += genreWeight
			reasons = append(reasons, "Matches your favorite genre: "+g)
		}
		if d := firstMatch(m.Director, directors); d != "" {
			score += directorWeight
			reasons = append(reasons, "Directed by "+d)
		}
		if a := firstMatch(m.Cast, actors); a != "" {
			score += actorWeight
			reasons = append(reasons, "Features "+a)
		}
		if rating, ok := m.ParsedRating(); ok {
			if prefs.MinRating > 0 && rating < float64(prefs.MinRating) {
				continue
			}
			if rating >= highRatingThreshold {
				score += ratingWeight
				reasons = append(reasons, highlyRated(m))
			}
		}
		if score <= 0 {
			continue
		}
		reason := defaultReason
		if len(reasons) > 0 {
			if len(reasons) > maxReasonParts {
				reasons = reasons[:maxReasonParts]
			}
			reason = strings.Join(reasons, "; ")
		}
		scored = append(scored, model.Recommendation{Movie: m, Reason: reason, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func highlyRated(m model.Movie) string {
	return fmt.Sprintf("Highly rated (%s/10)", strings.TrimSpace(m.Rating))
}

// backfill picks up to n eligible movies by descending parsed rating.
// Movies whose rating does not parse sort last in catalog order.
func backfill(catalog []model.Movie, excluded map[uint64]bool, n int) []model.Recommendation {
	type rated struct {
		movie  model.Movie
		rating float64
		ok     bool
	}
	pool := make([]rated, 0, len(catalog))
	for _, m := range catalog {
		if excluded[m.ID] {
			continue
		}
		r, ok := m.ParsedRating()
		pool = append(pool, rated{movie: m, rating: r, ok: ok})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].ok != pool[j].ok {
			return pool[i].ok
		}
		return pool[i].rating > pool[j].rating
	})
	if len(pool) > n {
		pool = pool[:n]
	}
	out := make([]model.Recommendation, 0, len(pool))
	for _, p := range pool {
		reason := popularReason
		if strings.TrimSpace(p.movie.Rating) != "" {
			reason = highlyRated(p.movie)
		}
		out = append(out, model.Recommendation{Movie: p.movie, Reason: reason})
	}
	return out
}

// Similar returns up to limit other movies sharing a genre token with
// movieID or directed by the same director, in catalog order.  An unknown
// movieID yields an empty list.
func (s *RecommendationService) Similar(ctx context.Context, movieID uint64, limit int) ([]model.Movie, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	src, err := s.movies.GetByID(ctx, movieID)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.Movie{}, nil
	}
	if err != nil {
		return nil, err
	}
	catalog, err := s.movies.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	genres := model.SplitTokens(src.Genre)
	director := strings.TrimSpace(src.Director)

	out := make([]model.Movie, 0, limit)
	for _, m := range catalog {
		if len(out) == limit {
			break
		}
		if m.ID == src.ID {
			continue
		}
		if firstMatch(m.Genre, genres) != "" || (director != "" && model.ContainsFold(m.Director, director)) {
			out = append(out, m)
		}
	}
	return out, nil
}

// InvalidateUser drops cached recommendations for userID.
func (s *RecommendationService) InvalidateUser(ctx context.Context, userID uint64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}
