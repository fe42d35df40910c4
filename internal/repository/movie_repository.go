package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cargarn1/MovieFan/internal/model"
)

// MovieRepo reads the movie catalog.  The catalog is owned by the ingestion
// subsystem; this service never writes it.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = "id,title,year,genre,director,cast_list,COALESCE(plot,''),imdb_rating,average_rating"

func scanMovie(sc interface{ Scan(...any) error }) (model.Movie, error) {
	var (
		m    model.Movie
		year sql.NullInt64
	)
	if err := sc.Scan(&m.ID, &m.Title, &year, &m.Genre, &m.Director, &m.Cast, &m.Plot, &m.Rating, &m.AverageRating); err != nil {
		return model.Movie{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		m.Year = &y
	}
	return m, nil
}

// GetByID returns one movie or a NotFound failure.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, Fail(ErrNotFound, ReasonMovieNotFound)
	}
	if err != nil {
		return model.Movie{}, fmt.Errorf("query movie: %w", err)
	}
	return m, nil
}

// All returns the whole catalog in id order.
func (r *MovieRepo) All(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
