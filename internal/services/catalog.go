package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/amaumene/streambox/internal/constants"
	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/internal/models"
	"github.com/amaumene/streambox/pkg/logger"
)

const (
	trendingEndpoint = "/trending/all/week"
	popularEndpoint  = "/movie/popular"
	discoverEndpoint = "/discover/movie"
	searchEndpoint   = "/search/multi"
)

// Catalog normalises upstream collections into catalog items. It holds no
// mutable state; upstream failures come back as empty lists or typed errors.
type Catalog struct {
	upstream     Upstream
	imageBaseURL string
	logger       logger.Logger
}

func NewCatalog(upstream Upstream, imageBaseURL string, log logger.Logger) *Catalog {
	if log == nil {
		log = logger.New()
	}
	return &Catalog{
		upstream:     upstream,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		logger:       log,
	}
}

// ListTrending returns this week's trending movies and series, each mapped
// with its own media type.
func (c *Catalog) ListTrending(ctx context.Context, limit int) []models.CatalogItem {
	payload := c.upstream.Request(ctx, trendingEndpoint, nil)
	return c.mapCollection(payload, clampLimit(limit), func(item models.TMDBItem) (string, bool) {
		if item.MediaType == "" {
			return constants.MediaTypeMovie, true
		}
		return item.MediaType, true
	})
}

// ListByCategory serves a browse category. Unknown keywords get the popular list.
func (c *Catalog) ListByCategory(ctx context.Context, category string, limit int) []models.CatalogItem {
	route := ResolveCategory(category)

	switch route.Kind {
	case CategoryTrending:
		return c.ListTrending(ctx, limit)
	case CategoryGenre:
		params := url.Values{}
		params.Set("with_genres", strconv.Itoa(route.GenreID))
		params.Set("sort_by", "popularity.desc")
		return c.listMovies(ctx, discoverEndpoint, params, limit)
	default:
		return c.listMovies(ctx, popularEndpoint, nil, limit)
	}
}

func (c *Catalog) listMovies(ctx context.Context, endpoint string, params url.Values, limit int) []models.CatalogItem {
	payload := c.upstream.Request(ctx, endpoint, params)
	return c.mapCollection(payload, clampLimit(limit), func(models.TMDBItem) (string, bool) {
		return constants.MediaTypeMovie, true
	})
}

// Search runs a multi-type search and keeps movie and series results only.
// A blank query is rejected before any upstream call.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]models.CatalogItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrInvalidQuery
	}

	params := url.Values{}
	params.Set("query", query)
	payload := c.upstream.Request(ctx, searchEndpoint, params)

	return c.mapCollection(payload, clampLimit(limit), func(item models.TMDBItem) (string, bool) {
		return item.MediaType, isCatalogMediaType(item.MediaType)
	}), nil
}

// GetDetails fetches a single movie or series. The trailer is left nil for
// the caller to fill from GetTrailer.
func (c *Catalog) GetDetails(ctx context.Context, id int64, mediaType string) (*models.CatalogDetails, error) {
	if !isCatalogMediaType(mediaType) {
		return nil, apperrors.NewInvalidMediaTypeError(mediaType)
	}
	if id <= 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %d", mediaType, id))
	}

	endpoint := fmt.Sprintf("/%s/%d", mediaType, id)
	payload := c.upstream.Request(ctx, endpoint, nil)
	if !payload.OK() {
		return nil, payload.Err(endpoint)
	}

	var raw models.TMDBDetails
	if err := json.Unmarshal(payload.Body, &raw); err != nil {
		c.logger.Warnf("[Catalog] malformed details payload for %s: %v", endpoint, err)
		return nil, apperrors.New(apperrors.KindMalformedPayload, "undecodable details for "+endpoint, err)
	}
	if raw.ID <= 0 {
		return nil, apperrors.NewNotFoundError(endpoint)
	}

	details := &models.CatalogDetails{
		CatalogItem: c.MapItem(raw.TMDBItem, mediaType),
		Genres:      make([]string, 0, len(raw.Genres)),
	}
	if mediaType == constants.MediaTypeTV {
		seasons := raw.NumberOfSeasons
		details.Seasons = &seasons
	} else if raw.Runtime > 0 {
		details.Duration = formatDuration(raw.Runtime)
	}
	for _, g := range raw.Genres {
		if g.Name != "" {
			details.Genres = append(details.Genres, g.Name)
		}
	}

	return details, nil
}

// GetTrailer returns the watch URL of the first YouTube trailer or teaser.
func (c *Catalog) GetTrailer(ctx context.Context, id int64, mediaType string) (string, bool) {
	if !isCatalogMediaType(mediaType) || id <= 0 {
		return "", false
	}

	endpoint := fmt.Sprintf("/%s/%d/videos", mediaType, id)
	payload := c.upstream.Request(ctx, endpoint, nil)
	if !payload.OK() {
		return "", false
	}

	for _, raw := range decodeResults(payload.Body) {
		var video models.TMDBVideo
		if err := json.Unmarshal(raw, &video); err != nil {
			continue
		}
		if video.Site == "YouTube" && (video.Type == "Trailer" || video.Type == "Teaser") && video.Key != "" {
			return constants.YouTubeWatchURL + url.QueryEscape(video.Key), true
		}
	}
	return "", false
}

// mapCollection decodes a collection payload in upstream order, keeps the
// entries accepted by pick and stops at limit.
func (c *Catalog) mapCollection(payload Payload, limit int, pick func(models.TMDBItem) (string, bool)) []models.CatalogItem {
	items := make([]models.CatalogItem, 0, limit)
	if !payload.OK() {
		return items
	}

	results := decodeResults(payload.Body)
	for _, raw := range results {
		if len(items) == limit {
			break
		}
		item, ok := decodeItem(raw)
		if !ok {
			c.logger.Debugf("[Catalog] skipping undecodable result: %.120s", string(raw))
			continue
		}
		mediaType, keep := pick(item)
		if !keep {
			continue
		}
		items = append(items, c.MapItem(item, mediaType))
	}
	return items
}

func isCatalogMediaType(mediaType string) bool {
	return mediaType == constants.MediaTypeMovie || mediaType == constants.MediaTypeTV
}

func clampLimit(limit int) int {
	return max(constants.MinListLimit, min(constants.MaxListLimit, limit))
}
