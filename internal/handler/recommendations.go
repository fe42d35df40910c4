package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cargarn1/MovieFan/internal/model"
	"github.com/cargarn1/MovieFan/internal/service"
)

// RecommendationHandler serves personalized and similar-movie lists plus
// the preferences that drive them.
type RecommendationHandler struct {
	Recs  *service.RecommendationService
	Prefs *service.PreferenceService
}

func NewRecommendationHandler(recs *service.RecommendationService, prefs *service.PreferenceService) *RecommendationHandler {
	return &RecommendationHandler{Recs: recs, Prefs: prefs}
}

type preferencesReq struct {
	FavoriteGenres    *string `json:"favorite_genres" validate:"omitempty,max=500"`
	FavoriteDirectors *string `json:"favorite_directors" validate:"omitempty,max=500"`
	FavoriteActors    *string `json:"favorite_actors" validate:"omitempty,max=500"`
	MinRating         *int    `json:"min_rating" validate:"omitempty,min=0,max=10"`
	PreferredDecades  *string `json:"preferred_decades" validate:"omitempty,max=100"`
}

// Recommend handles GET /v1/recommendations?limit=.
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, ok := queryLimit(c, service.DefaultRecommendationLimit, service.MaxRecommendationLimit)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
	}
	recs, err := h.Recs.Recommend(c.Request().Context(), uid, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"recommendations": recs})
}

// Similar handles GET /v1/movies/:id/similar?limit=.  An unknown movie
// yields an empty list.
func (h *RecommendationHandler) Similar(c echo.Context) error {
	movieID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	limit, ok := queryLimit(c, service.DefaultSimilarLimit, service.MaxRecommendationLimit)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
	}
	movies, err := h.Recs.Similar(c.Request().Context(), movieID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": movies})
}

// GetPreferences handles GET /v1/preferences.
func (h *RecommendationHandler) GetPreferences(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	prefs, err := h.Prefs.Get(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /v1/preferences.  Omitted fields keep
// their stored value.
func (h *RecommendationHandler) UpdatePreferences(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req preferencesReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	prefs, err := h.Prefs.Update(c.Request().Context(), uid, model.PreferencesPatch{
		FavoriteGenres:    req.FavoriteGenres,
		FavoriteDirectors: req.FavoriteDirectors,
		FavoriteActors:    req.FavoriteActors,
		MinRating:         req.MinRating,
		PreferredDecades:  req.PreferredDecades,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}
