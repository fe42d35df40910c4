package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/repository"
)

func movieIDs(recs []model.Recommendation) []uint64 {
	out := make([]uint64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Movie.ID)
	}
	return out
}

func TestRecommendNolanScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.prefs.Upsert(ctx, model.Preferences{
		UserID:            alice,
		FavoriteGenres:    "Sci-Fi",
		FavoriteDirectors: "Christopher Nolan",
		MinRating:         7,
	}))

	recs, err := f.recs.Recommend(ctx, alice, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	first := recs[0]
	assert.Equal(t, inception, first.Movie.ID)
	assert.Equal(t, 10, first.Score)
	assert.Equal(t, "Matches your favorite genre: Sci-Fi; Directed by Christopher Nolan", first.Reason)

	// The drama is only reachable through backfill.
	require.Len(t, recs, 2)
	assert.Equal(t, drama, recs[1].Movie.ID)
	assert.Equal(t, 0, recs[1].Score)
	assert.Equal(t, "Highly rated (9.3/10)", recs[1].Reason)
}

func TestRecommendWithoutPreferencesBackfillsByRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.movies.Add(model.Movie{ID: 12, Title: "Unrated", Genre: "Drama"})
	f.movies.Add(model.Movie{ID: 13, Title: "Garbled", Genre: "Drama", Rating: "N/A"})
	f.movies.Add(model.Movie{ID: 14, Title: "Okay", Genre: "Comedy", Rating: "6.1"})

	recs, err := f.recs.Recommend(ctx, alice, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{drama, inception, 14, 12, 13}, movieIDs(recs))
	assert.Equal(t, "Popular choice", recs[3].Reason)
	assert.Equal(t, "Highly rated (N/A/10)", recs[4].Reason)

	recs, err = f.recs.Recommend(ctx, alice, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{drama, inception}, movieIDs(recs))
}

func TestRecommendExcludesRoomMovies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createRoom(t, alice, 10, false)

	recs, err := f.recs.Recommend(ctx, alice, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{drama}, movieIDs(recs))

	recs, err = f.recs.Recommend(ctx, bob, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{drama, inception}, movieIDs(recs))
}

func TestRecommendMinRatingDiscards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.movies.Add(model.Movie{ID: 20, Title: "Following", Genre: "Crime", Director: "Christopher Nolan", Rating: "7.5"})
	f.movies.Add(model.Movie{ID: 21, Title: "Early Nolan", Genre: "Crime", Director: "Christopher Nolan", Rating: "6.0"})
	f.movies.Add(model.Movie{ID: 22, Title: "Lost Nolan", Genre: "Crime", Director: "Christopher Nolan", Rating: "?"})
	require.NoError(t, f.prefs.Upsert(ctx, model.Preferences{
		UserID:            bob,
		FavoriteDirectors: "christopher nolan",
		MinRating:         7,
	}))

	recs, err := f.recs.Recommend(ctx, bob, 3)
	require.NoError(t, err)
	// 21 is below the floor; 22 has no parseable rating and keeps its match.
	require.Len(t, recs, 3)
	assert.Equal(t, []uint64{inception, 20, 22}, movieIDs(recs))
	assert.Equal(t, 7, recs[0].Score)
	assert.Equal(t, 7, recs[1].Score)
	assert.Equal(t, 5, recs[2].Score)
	assert.Equal(t, "Directed by christopher nolan", recs[2].Reason)
}

func TestRecommendStableTiesAndReasonCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.movies.Add(model.Movie{ID: 30, Title: "A", Genre: "Sci-Fi", Director: "Christopher Nolan", Cast: "Michael Caine", Rating: "8.0"})
	require.NoError(t, f.prefs.Upsert(ctx, model.Preferences{
		UserID:            carol,
		FavoriteGenres:    "sci-fi, , action",
		FavoriteDirectors: "Nolan",
		FavoriteActors:    "Caine, DiCaprio",
	}))

	recs, err := f.recs.Recommend(ctx, carol, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	// Both score 3+5+4+2; catalog order breaks the tie.
	assert.Equal(t, inception, recs[0].Movie.ID)
	assert.Equal(t, 14, recs[0].Score)
	assert.Equal(t, "Matches your favorite genre: sci-fi; Directed by Nolan", recs[0].Reason)
}

func TestRecommendEmptyPreferencesScoresWholeCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.prefs.Upsert(ctx, model.Preferences{UserID: dave}))

	recs, err := f.recs.Recommend(ctx, dave, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{inception, drama}, movieIDs(recs))
	assert.Equal(t, 2, recs[0].Score)
	assert.Equal(t, "Highly rated (8.8/10)", recs[0].Reason)
}

func TestSimilar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.movies.Add(model.Movie{ID: 40, Title: "Interstellar", Genre: "Adventure, Sci-Fi", Director: "Christopher Nolan"})
	f.movies.Add(model.Movie{ID: 41, Title: "Memento", Genre: "Mystery", Director: "Christopher Nolan"})
	f.movies.Add(model.Movie{ID: 42, Title: "Die Hard", Genre: "action", Director: "John McTiernan"})

	movies, err := f.recs.Similar(ctx, inception, 5)
	require.NoError(t, err)
	ids := make([]uint64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []uint64{40, 41, 42}, ids)

	movies, err = f.recs.Similar(ctx, inception, 1)
	require.NoError(t, err)
	assert.Len(t, movies, 1)

	movies, err = f.recs.Similar(ctx, 999, 5)
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

// countingCache is an in-memory RecommendationCache.
type countingCache struct {
	data        map[[2]uint64][]model.Recommendation
	hits        int
	invalidated []uint64
}

func (c *countingCache) Get(_ context.Context, userID uint64, limit int) ([]model.Recommendation, bool) {
	recs, ok := c.data[[2]uint64{userID, uint64(limit)}]
	if ok {
		c.hits++
	}
	return recs, ok
}

func (c *countingCache) Set(_ context.Context, userID uint64, limit int, recs []model.Recommendation) {
	c.data[[2]uint64{userID, uint64(limit)}] = recs
}

func (c *countingCache) Invalidate(_ context.Context, userID uint64) {
	c.invalidated = append(c.invalidated, userID)
	for k := range c.data {
		if k[0] == userID {
			delete(c.data, k)
		}
	}
}

func TestRecommendUsesCacheAndPreferenceUpdateInvalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := &countingCache{data: map[[2]uint64][]model.Recommendation{}}
	recs := NewRecommendationService(f.movies, f.prefs, f.store, cache)
	prefs := NewPreferenceService(f.prefs, recs)

	first, err := recs.Recommend(ctx, alice, 5)
	require.NoError(t, err)
	second, err := recs.Recommend(ctx, alice, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	genres := "Drama"
	_, err = prefs.Update(ctx, alice, model.PreferencesPatch{FavoriteGenres: &genres})
	require.NoError(t, err)
	assert.Equal(t, []uint64{alice}, cache.invalidated)

	third, err := recs.Recommend(ctx, alice, 5)
	require.NoError(t, err)
	assert.Equal(t, drama, third[0].Movie.ID)
	assert.Equal(t, 1, cache.hits)
}

func TestNilRedisCacheDisablesCaching(t *testing.T) {
	f := newFixture(t)
	svc := NewRecommendationService(f.movies, f.prefs, f.store, NewRedisRecommendationCache(nil, "", 0))
	assert.Nil(t, svc.cache)

	_, err := svc.Recommend(context.Background(), alice, 0)
	require.NoError(t, err)
}

func TestPreferencesLazyCreateAndPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPreferenceService(f.prefs, nil)

	got, err := svc.Get(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, bob, got.UserID)
	assert.Empty(t, got.FavoriteGenres)
	_, found, err := f.prefs.Get(ctx, bob)
	require.NoError(t, err)
	assert.True(t, found)

	genres := " Sci-Fi ,,Drama "
	rating := 8
	got, err = svc.Update(ctx, bob, model.PreferencesPatch{FavoriteGenres: &genres, MinRating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi, Drama", got.FavoriteGenres)
	assert.Equal(t, 8, got.MinRating)
	assert.Equal(t, " Sci-Fi ,,Drama ", genres)

	directors := "Nolan"
	got, err = svc.Update(ctx, bob, model.PreferencesPatch{FavoriteDirectors: &directors})
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi, Drama", got.FavoriteGenres)
	assert.Equal(t, "Nolan", got.FavoriteDirectors)

	bad := 11
	_, err = svc.Update(ctx, bob, model.PreferencesPatch{MinRating: &bad})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestRecommendBackfillIgnoresNonFiniteRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.movies = repository.NewMemoryMovies(
		model.Movie{ID: 1, Title: "a", Rating: "6.0"},
		model.Movie{ID: 2, Title: "b", Rating: "NaN"},
		model.Movie{ID: 3, Title: "c", Rating: "9.5"},
		model.Movie{ID: 4, Title: "d", Rating: "8.0"},
		model.Movie{ID: 5, Title: "e", Rating: "+Inf"},
	)
	svc := NewRecommendationService(f.movies, f.prefs, f.store, nil)

	recs, err := svc.Recommend(ctx, alice, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4, 1, 2, 5}, movieIDs(recs))
}

func TestRecommendInfiniteRatingGetsNoBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.movies.Add(model.Movie{ID: 50, Title: "Overflow", Director: "Christopher Nolan", Rating: "Inf"})
	require.NoError(t, f.prefs.Upsert(ctx, model.Preferences{
		UserID:            bob,
		FavoriteDirectors: "Christopher Nolan",
		MinRating:         9,
	}))

	recs, err := f.recs.Recommend(ctx, bob, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	// Inception (8.8) falls under the floor; the unparseable rating keeps only the director match.
	assert.Equal(t, uint64(50), recs[0].Movie.ID)
	assert.Equal(t, 5, recs[0].Score)
	assert.Equal(t, "Directed by Christopher Nolan", recs[0].Reason)
}
