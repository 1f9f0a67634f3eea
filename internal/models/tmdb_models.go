// Package models defines upstream payload shapes and the catalog contract
// served to the front end.
package models

// TMDBItem is the subset of a TMDB movie, series or multi-search result the
// catalog reads. Movies carry title/release_date, series name/first_air_date.
type TMDBItem struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	Overview     string   `json:"overview"`
	BackdropPath string   `json:"backdrop_path"`
	PosterPath   string   `json:"poster_path"`
	ReleaseDate  string   `json:"release_date"`
	FirstAirDate string   `json:"first_air_date"`
	VoteAverage  *float64 `json:"vote_average"`
	Adult        bool     `json:"adult"`
	MediaType    string   `json:"media_type"`
}

// TMDBDetails is a single-item movie or series payload.
type TMDBDetails struct {
	TMDBItem
	Runtime         int         `json:"runtime"`
	NumberOfSeasons int         `json:"number_of_seasons"`
	Genres          []TMDBGenre `json:"genres"`
}

type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TMDBVideo is one entry of a /videos collection.
type TMDBVideo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}
