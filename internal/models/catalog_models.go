package models

// CatalogItem is the normalised movie or series shape returned to callers.
// Identity is the (ID, MediaType) pair since TMDB reuses ids across types.
type CatalogItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Backdrop    *string `json:"backdrop"`
	Poster      *string `json:"poster"`
	Rating      string  `json:"rating"`
	Year        int     `json:"year"`
	Match       int     `json:"match"`
	MediaType   string  `json:"media_type"`
}

// CatalogDetails extends CatalogItem with single-item fields.
// Seasons is set for series, Duration for movies with a known runtime.
type CatalogDetails struct {
	CatalogItem
	Genres   []string `json:"genres"`
	Seasons  *int     `json:"seasons,omitempty"`
	Duration string   `json:"duration,omitempty"`
	Trailer  *string  `json:"trailer"`
}

// Category is a browse facet offered to the front end.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
