package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/amaumene/streambox/internal/constants"
	"github.com/amaumene/streambox/internal/models"
)

// MapItem converts a raw TMDB item into the catalog contract.
func (c *Catalog) MapItem(raw models.TMDBItem, mediaType string) models.CatalogItem {
	score := constants.DefaultVoteAverage
	if raw.VoteAverage != nil {
		score = *raw.VoteAverage
	}

	return models.CatalogItem{
		ID:          raw.ID,
		Title:       resolveTitle(raw),
		Description: raw.Overview,
		Backdrop:    c.imageURL(raw.BackdropPath),
		Poster:      c.imageURL(raw.PosterPath),
		Rating:      deriveRating(raw.Adult, score),
		Year:        extractYear(raw.ReleaseDate, raw.FirstAirDate),
		Match:       matchScore(score),
		MediaType:   mediaType,
	}
}

func resolveTitle(raw models.TMDBItem) string {
	if raw.Title != "" {
		return raw.Title
	}
	if raw.Name != "" {
		return raw.Name
	}
	return constants.UnknownTitle
}

// extractYear reads the year from the first non-empty date. Anything that is
// not a four-digit year yields DefaultYear.
func extractYear(releaseDate, firstAirDate string) int {
	date := releaseDate
	if date == "" {
		date = firstAirDate
	}
	if len(date) < 4 {
		return constants.DefaultYear
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1000 || year > 9999 {
		return constants.DefaultYear
	}
	return year
}

// matchScore turns a 0-10 vote average into a 0-100 percentage.
func matchScore(score float64) int {
	if math.IsNaN(score) {
		score = constants.DefaultVoteAverage
	}
	match := int(math.Round(score * 10))
	return max(0, min(100, match))
}

// deriveRating picks the content rating; the adult flag wins over the score.
func deriveRating(adult bool, score float64) string {
	switch {
	case adult:
		return constants.RatingR
	case score >= 8:
		return constants.RatingTVMA
	case score >= 6:
		return constants.RatingTV14
	default:
		return constants.RatingPG13
	}
}

func (c *Catalog) imageURL(path string) *string {
	if path == "" {
		return nil
	}
	u := c.imageBaseURL + path
	return &u
}

func formatDuration(runtimeMinutes int) string {
	return fmt.Sprintf("%dh %dm", runtimeMinutes/60, runtimeMinutes%60)
}

// decodeResults extracts the results array of a collection payload. A missing
// or malformed array yields nil.
func decodeResults(body json.RawMessage) []json.RawMessage {
	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Results) == 0 {
		return nil
	}

	var results []json.RawMessage
	if err := json.Unmarshal(envelope.Results, &results); err != nil {
		return nil
	}
	return results
}

// decodeItem decodes one collection entry; entries without a usable id are rejected.
func decodeItem(raw json.RawMessage) (models.TMDBItem, bool) {
	var item models.TMDBItem
	if err := json.Unmarshal(raw, &item); err != nil || item.ID <= 0 {
		return models.TMDBItem{}, false
	}
	return item, true
}
