package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/internal/models"
	"github.com/amaumene/streambox/pkg/logger"
)

const testImageBase = "https://img.example.org/t/p/original"

type upstreamCall struct {
	endpoint string
	params   url.Values
}

// fakeUpstream serves canned payloads keyed by endpoint and records calls.
type fakeUpstream struct {
	mu       sync.Mutex
	payloads map[string]Payload
	calls    []upstreamCall
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{payloads: make(map[string]Payload)}
}

func (f *fakeUpstream) set(endpoint, body string) {
	f.payloads[endpoint] = Payload{Outcome: OutcomeOK, Status: http.StatusOK, Body: json.RawMessage(body)}
}

func (f *fakeUpstream) Request(_ context.Context, endpoint string, params url.Values) Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, upstreamCall{endpoint: endpoint, params: params})
	if p, ok := f.payloads[endpoint]; ok {
		return p
	}
	return Payload{Outcome: OutcomeUnavailable, Cause: fmt.Errorf("no payload for %s", endpoint)}
}

func newTestCatalog(up Upstream) *Catalog {
	return NewCatalog(up, testImageBase+"/", logger.Discard())
}

func results(items ...string) string {
	return `{"page":1,"results":[` + strings.Join(items, ",") + `]}`
}

func scorePtr(v float64) *float64 { return &v }

func TestMapItemMatchScore(t *testing.T) {
	c := newTestCatalog(newFakeUpstream())

	for i := 0; i <= 100; i++ {
		score := float64(i) / 10
		item := c.MapItem(models.TMDBItem{ID: 1, Title: "x", VoteAverage: scorePtr(score)}, "movie")
		assert.Equal(t, i, item.Match, "score %.1f", score)
		assert.GreaterOrEqual(t, item.Match, 0)
		assert.LessOrEqual(t, item.Match, 100)
	}

	assert.Equal(t, 70, c.MapItem(models.TMDBItem{ID: 1}, "movie").Match, "missing score uses the default")
	assert.Equal(t, 100, c.MapItem(models.TMDBItem{ID: 1, VoteAverage: scorePtr(12)}, "movie").Match)
	assert.Equal(t, 0, c.MapItem(models.TMDBItem{ID: 1, VoteAverage: scorePtr(-3)}, "movie").Match)
}

func TestMapItemRatingPriority(t *testing.T) {
	tests := []struct {
		name  string
		adult bool
		score *float64
		want  string
	}{
		{name: "adult beats high score", adult: true, score: scorePtr(9.1), want: "R"},
		{name: "adult beats low score", adult: true, score: scorePtr(2), want: "R"},
		{name: "score 8", score: scorePtr(8.0), want: "TV-MA"},
		{name: "score 9.4", score: scorePtr(9.4), want: "TV-MA"},
		{name: "score 7.99", score: scorePtr(7.99), want: "TV-14"},
		{name: "score 6", score: scorePtr(6.0), want: "TV-14"},
		{name: "score 5.9", score: scorePtr(5.9), want: "PG-13"},
		{name: "missing score", score: nil, want: "TV-14"},
	}

	c := newTestCatalog(newFakeUpstream())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := c.MapItem(models.TMDBItem{ID: 1, Adult: tt.adult, VoteAverage: tt.score}, "movie")
			assert.Equal(t, tt.want, item.Rating)
		})
	}
}

func TestMapItemFields(t *testing.T) {
	c := newTestCatalog(newFakeUpstream())

	var movie models.TMDBItem
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 278,
		"title": "The Shawshank Redemption",
		"overview": "Two imprisoned men bond.",
		"backdrop_path": "/abc.jpg",
		"poster_path": null,
		"release_date": "1994-09-23",
		"vote_average": 8.7
	}`), &movie))

	item := c.MapItem(movie, "movie")
	assert.Equal(t, int64(278), item.ID)
	assert.Equal(t, "The Shawshank Redemption", item.Title)
	assert.Equal(t, "Two imprisoned men bond.", item.Description)
	require.NotNil(t, item.Backdrop)
	assert.Equal(t, testImageBase+"/abc.jpg", *item.Backdrop)
	assert.Nil(t, item.Poster)
	assert.Equal(t, 1994, item.Year)
	assert.Equal(t, 87, item.Match)
	assert.Equal(t, "TV-MA", item.Rating)
	assert.Equal(t, "movie", item.MediaType)

	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"poster":null`)
}

func TestMapItemSeriesAndFallbacks(t *testing.T) {
	c := newTestCatalog(newFakeUpstream())

	series := c.MapItem(models.TMDBItem{ID: 1399, Name: "Game of Thrones", FirstAirDate: "2011-04-17"}, "tv")
	assert.Equal(t, "Game of Thrones", series.Title)
	assert.Equal(t, 2011, series.Year)

	bare := c.MapItem(models.TMDBItem{ID: 5}, "movie")
	assert.Equal(t, "Unknown", bare.Title)
	assert.Equal(t, 2024, bare.Year)
	assert.Nil(t, bare.Backdrop)
}

func TestExtractYear(t *testing.T) {
	assert.Equal(t, 1999, extractYear("1999-03-31", ""))
	assert.Equal(t, 2008, extractYear("", "2008-01-20"))
	assert.Equal(t, 2001, extractYear("2001", "1990-01-01"))
	assert.Equal(t, 2024, extractYear("", ""))
	assert.Equal(t, 2024, extractYear("19", ""))
	assert.Equal(t, 2024, extractYear("abcd-01-01", ""))
	assert.Equal(t, 2024, extractYear("0999-01-01", ""))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h 22m", formatDuration(142))
	assert.Equal(t, "0h 45m", formatDuration(45))
	assert.Equal(t, "3h 0m", formatDuration(180))
}

func TestListTrendingPrefix(t *testing.T) {
	up := newFakeUpstream()
	var entries []string
	for i := 1; i <= 20; i++ {
		entries = append(entries, fmt.Sprintf(`{"id":%d,"title":"T%d","media_type":"movie"}`, i, i))
	}
	up.set(trendingEndpoint, results(entries...))

	c := newTestCatalog(up)
	full := c.ListTrending(context.Background(), 20)
	top := c.ListTrending(context.Background(), 5)

	require.Len(t, full, 20)
	require.Len(t, top, 5)
	assert.Equal(t, full[:5], top)
	for i, item := range top {
		assert.Equal(t, int64(i+1), item.ID)
	}
}

func TestListTrendingMediaTypes(t *testing.T) {
	up := newFakeUpstream()
	up.set(trendingEndpoint, results(
		`{"id":1,"title":"Film","media_type":"movie"}`,
		`{"id":2,"name":"Show","media_type":"tv"}`,
		`{"id":3,"title":"Untyped"}`,
		`{"title":"No id"}`,
	))

	items := newTestCatalog(up).ListTrending(context.Background(), 10)

	require.Len(t, items, 3)
	assert.Equal(t, "movie", items[0].MediaType)
	assert.Equal(t, "tv", items[1].MediaType)
	assert.Equal(t, "Show", items[1].Title)
	assert.Equal(t, "movie", items[2].MediaType)
}

func TestListTrendingClampsLimit(t *testing.T) {
	up := newFakeUpstream()
	var entries []string
	for i := 1; i <= 60; i++ {
		entries = append(entries, fmt.Sprintf(`{"id":%d}`, i))
	}
	up.set(trendingEndpoint, results(entries...))
	c := newTestCatalog(up)

	assert.Len(t, c.ListTrending(context.Background(), 0), 1)
	assert.Len(t, c.ListTrending(context.Background(), 500), 50)
}

func TestListTrendingUnavailable(t *testing.T) {
	items := newTestCatalog(newFakeUpstream()).ListTrending(context.Background(), 10)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListTrendingMalformedResults(t *testing.T) {
	up := newFakeUpstream()
	up.set(trendingEndpoint, `{"results":"nope"}`)
	assert.Empty(t, newTestCatalog(up).ListTrending(context.Background(), 10))

	up.set(trendingEndpoint, `{"page":1}`)
	assert.Empty(t, newTestCatalog(up).ListTrending(context.Background(), 10))
}

func TestListTrendingTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, _ := newTestTMDB(t, srv, []string{"key-a"}, WithTimeout(50*time.Millisecond))
	items := newTestCatalog(client).ListTrending(context.Background(), 10)

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListByCategoryRouting(t *testing.T) {
	up := newFakeUpstream()
	up.set(popularEndpoint, results(`{"id":10,"title":"Popular"}`))
	up.set(discoverEndpoint, results(`{"id":20,"title":"Genre"}`))
	up.set(trendingEndpoint, results(`{"id":30,"name":"Trend","media_type":"tv"}`))
	c := newTestCatalog(up)

	popular := c.ListByCategory(context.Background(), "popular", 10)
	unknown := c.ListByCategory(context.Background(), "unknown-xyz", 10)
	assert.Equal(t, popular, unknown)
	require.Len(t, popular, 1)
	assert.Equal(t, "movie", popular[0].MediaType)

	trending := c.ListByCategory(context.Background(), "trending", 10)
	require.Len(t, trending, 1)
	assert.Equal(t, "tv", trending[0].MediaType)

	horror := c.ListByCategory(context.Background(), " Horror ", 10)
	require.Len(t, horror, 1)
	assert.Equal(t, int64(20), horror[0].ID)

	last := up.calls[len(up.calls)-1]
	assert.Equal(t, discoverEndpoint, last.endpoint)
	assert.Equal(t, "27", last.params.Get("with_genres"))
	assert.Equal(t, "popularity.desc", last.params.Get("sort_by"))
}

func TestResolveCategory(t *testing.T) {
	assert.Equal(t, CategoryRoute{Kind: CategoryTrending}, ResolveCategory("trending"))
	assert.Equal(t, CategoryRoute{Kind: CategoryPopular}, ResolveCategory("popular"))
	assert.Equal(t, CategoryRoute{Kind: CategoryGenre, GenreID: 28}, ResolveCategory("ACTION"))
	assert.Equal(t, CategoryRoute{Kind: CategoryGenre, GenreID: 878}, ResolveCategory("scifi"))
	assert.Equal(t, CategoryRoute{Kind: CategoryPopular}, ResolveCategory(""))
	assert.Equal(t, CategoryRoute{Kind: CategoryPopular}, ResolveCategory("westerns"))
}

func TestCategoriesList(t *testing.T) {
	cats := Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, models.Category{ID: "trending", Name: "Trending Now"}, cats[0])

	cats[0].Name = "changed"
	assert.Equal(t, "Trending Now", Categories()[0].Name)

	for _, cat := range cats {
		route := ResolveCategory(cat.ID)
		if cat.ID != "popular" {
			assert.NotEqual(t, CategoryPopular, route.Kind, cat.ID)
		}
	}
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	up := newFakeUpstream()
	c := newTestCatalog(up)

	for _, q := range []string{"", "   ", "\t"} {
		items, err := c.Search(context.Background(), q, 10)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
		assert.Nil(t, items)
	}
	assert.Empty(t, up.calls)
}

func TestSearchFiltersBeforeTruncating(t *testing.T) {
	up := newFakeUpstream()
	up.set(searchEndpoint, results(
		`{"id":1,"name":"Some Actor","media_type":"person"}`,
		`{"id":2,"title":"Film A","media_type":"movie"}`,
		`{"id":3,"name":"Another Person","media_type":"person"}`,
		`{"id":4,"name":"Show B","media_type":"tv"}`,
		`{"id":5,"title":"Film C","media_type":"movie"}`,
	))
	c := newTestCatalog(up)

	items, err := c.Search(context.Background(), "  film ", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, int64(4), items[1].ID)
	assert.Equal(t, "tv", items[1].MediaType)
	assert.Equal(t, "film", up.calls[0].params.Get("query"))
}

func TestSearchUnavailable(t *testing.T) {
	items, err := newTestCatalog(newFakeUpstream()).Search(context.Background(), "matrix", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetDetailsMovie(t *testing.T) {
	up := newFakeUpstream()
	up.set("/movie/278", `{
		"id": 278,
		"title": "The Shawshank Redemption",
		"release_date": "1994-09-23",
		"vote_average": 8.7,
		"runtime": 142,
		"genres": [{"id":18,"name":"Drama"},{"id":80,"name":"Crime"}]
	}`)

	details, err := newTestCatalog(up).GetDetails(context.Background(), 278, "movie")
	require.NoError(t, err)
	assert.Equal(t, "2h 22m", details.Duration)
	assert.Equal(t, []string{"Drama", "Crime"}, details.Genres)
	assert.Nil(t, details.Seasons)
	assert.Nil(t, details.Trailer)
	assert.Equal(t, 1994, details.Year)
	assert.Equal(t, "movie", details.MediaType)
}

func TestGetDetailsSeries(t *testing.T) {
	up := newFakeUpstream()
	up.set("/tv/1399", `{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17","number_of_seasons":8,"genres":[]}`)

	details, err := newTestCatalog(up).GetDetails(context.Background(), 1399, "tv")
	require.NoError(t, err)
	require.NotNil(t, details.Seasons)
	assert.Equal(t, 8, *details.Seasons)
	assert.Empty(t, details.Duration)
	assert.NotNil(t, details.Genres)
}

func TestGetDetailsErrors(t *testing.T) {
	up := newFakeUpstream()
	up.payloads["/movie/404"] = Payload{Outcome: OutcomeNotFound, Status: http.StatusNotFound}
	up.set("/movie/7", `{}`)
	c := newTestCatalog(up)

	_, err := c.GetDetails(context.Background(), 1, "person")
	assert.ErrorIs(t, err, apperrors.ErrInvalidMediaType)

	_, err = c.GetDetails(context.Background(), 404, "movie")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = c.GetDetails(context.Background(), 7, "movie")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = c.GetDetails(context.Background(), 9, "movie")
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)

	_, err = c.GetDetails(context.Background(), 0, "movie")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetTrailer(t *testing.T) {
	up := newFakeUpstream()
	up.set("/movie/278/videos", `{"id":278,"results":[{"site":"YouTube","type":"Trailer","key":"abc123"}]}`)

	trailer, ok := newTestCatalog(up).GetTrailer(context.Background(), 278, "movie")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", trailer)
}

func TestGetTrailerSelection(t *testing.T) {
	up := newFakeUpstream()
	up.set("/tv/1/videos", results(
		`{"site":"Vimeo","type":"Trailer","key":"vimeo1"}`,
		`{"site":"YouTube","type":"Featurette","key":"feat1"}`,
		`{"site":"YouTube","type":"Teaser","key":"teaser1"}`,
		`{"site":"YouTube","type":"Trailer","key":"trailer1"}`,
	))
	up.set("/movie/2/videos", results(`{"site":"YouTube","type":"Clip","key":"clip"}`))
	c := newTestCatalog(up)

	trailer, ok := c.GetTrailer(context.Background(), 1, "tv")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=teaser1", trailer)

	_, ok = c.GetTrailer(context.Background(), 2, "movie")
	assert.False(t, ok)

	_, ok = c.GetTrailer(context.Background(), 3, "movie")
	assert.False(t, ok, "unavailable upstream means no trailer")

	_, ok = c.GetTrailer(context.Background(), 1, "person")
	assert.False(t, ok)
}

func TestCatalogOverRateLimitedUpstream(t *testing.T) {
	rec := &keyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("api_key")
		rec.add(key)
		if key == "first" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(results(`{"id":550,"title":"Fight Club","vote_average":8.4}`)))
	}))
	defer srv.Close()

	client, pool := newTestTMDB(t, srv, []string{"first", "second"})
	items := newTestCatalog(client).ListByCategory(context.Background(), "popular", 10)

	require.Len(t, items, 1)
	assert.Equal(t, "Fight Club", items[0].Title)
	assert.Equal(t, 84, items[0].Match)
	assert.Equal(t, 1, pool.Index())
	assert.Equal(t, []string{"first", "second"}, rec.seen())
}
