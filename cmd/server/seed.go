package main

import "github.com/cargarn1/MovieFan/internal/model"

func year(y int) *int { return &y }

// demoCatalog seeds the in-memory movie store.  The MySQL catalog is
// populated by the ingestion service instead.
func demoCatalog() []model.Movie {
	return []model.Movie{
		{ID: 1, Title: "Inception", Year: year(2010), Genre: "Action, Sci-Fi, Thriller", Director: "Christopher Nolan",
			Cast: "Leonardo DiCaprio, Joseph Gordon-Levitt, Elliot Page", Rating: "8.8"},
		{ID: 2, Title: "Interstellar", Year: year(2014), Genre: "Adventure, Drama, Sci-Fi", Director: "Christopher Nolan",
			Cast: "Matthew McConaughey, Anne Hathaway, Jessica Chastain", Rating: "8.7"},
		{ID: 3, Title: "The Shawshank Redemption", Year: year(1994), Genre: "Drama", Director: "Frank Darabont",
			Cast: "Tim Robbins, Morgan Freeman, Bob Gunton", Rating: "9.3"},
		{ID: 4, Title: "Arrival", Year: year(2016), Genre: "Drama, Mystery, Sci-Fi", Director: "Denis Villeneuve",
			Cast: "Amy Adams, Jeremy Renner, Forest Whitaker", Rating: "7.9"},
		{ID: 5, Title: "Pulp Fiction", Year: year(1994), Genre: "Crime, Drama", Director: "Quentin Tarantino",
			Cast: "John Travolta, Uma Thurman, Samuel L. Jackson", Rating: "8.9"},
		{ID: 6, Title: "Tenet", Year: year(2020), Genre: "Action, Sci-Fi, Thriller", Director: "Christopher Nolan",
			Cast: "John David Washington, Robert Pattinson, Elizabeth Debicki", Rating: "7.3"},
		{ID: 7, Title: "The Room", Year: year(2003), Genre: "Drama", Director: "Tommy Wiseau",
			Cast: "Tommy Wiseau, Greg Sestero, Juliette Danielle", Rating: "3.6"},
		{ID: 8, Title: "Untitled Festival Short", Genre: "Short", Director: "", Cast: "", Rating: ""},
	}
}
