package domain

import "time"

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// MediaItem es la forma TMDB de un resultado de búsqueda.
type MediaItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	MediaType    string  `json:"media_type"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
}

type WatchlistItem struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	MediaID      int       `json:"media_id"`
	Title        string    `json:"title"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	Overview     string    `json:"overview"`
	VoteAverage  float64   `json:"vote_average"`
	MediaType    string    `json:"media_type"`
	AddedAt      time.Time `json:"added_at"`
}

type WatchedItem struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	MediaID      int       `json:"media_id"`
	Title        string    `json:"title"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	Overview     string    `json:"overview"`
	VoteAverage  float64   `json:"vote_average"`
	MediaType    string    `json:"media_type"`
	WatchedDate  time.Time `json:"watched_date"`
	Rating       *int      `json:"rating,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
