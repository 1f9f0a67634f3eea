// Package constants defines application-wide constants and default values.
package constants

const (
	AppName    = "streambox"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort     = "8001"
	DefaultLogLevel = "info"

	// Upstream provider
	TMDBBaseURL      = "https://api.themoviedb.org/3"
	TMDBImageBaseURL = "https://image.tmdb.org/t/p/original"
	YouTubeWatchURL  = "https://www.youtube.com/watch?v="

	// Media types accepted by the catalog
	MediaTypeMovie  = "movie"
	MediaTypeTV     = "tv"
	MediaTypeCustom = "custom"

	// Catalog normalisation defaults
	DefaultYear        = 2024
	DefaultVoteAverage = 7.0
	UnknownTitle       = "Unknown"

	// Content ratings
	RatingR    = "R"
	RatingTVMA = "TV-MA"
	RatingTV14 = "TV-14"
	RatingPG13 = "PG-13"

	// Custom video defaults
	DefaultCustomCategory = "My Videos"
	DefaultCustomRating   = RatingTV14
	DefaultCustomMatch    = 90
)
