package services

import (
	"strings"

	"github.com/amaumene/streambox/internal/models"
)

// CategoryKind is the closed set of ways a browse category is served.
type CategoryKind int

const (
	CategoryPopular CategoryKind = iota
	CategoryTrending
	CategoryGenre
)

// CategoryRoute is the resolved form of a category keyword.
type CategoryRoute struct {
	Kind    CategoryKind
	GenreID int
}

// genreIDs maps category keywords to TMDB movie genre ids.
var genreIDs = map[string]int{
	"action":      28,
	"comedy":      35,
	"documentary": 99,
	"horror":      27,
	"romance":     10749,
	"thriller":    53,
	"drama":       18,
	"scifi":       878,
}

var categoryRoutes = buildCategoryRoutes()

func buildCategoryRoutes() map[string]CategoryRoute {
	routes := map[string]CategoryRoute{
		"trending": {Kind: CategoryTrending},
		"popular":  {Kind: CategoryPopular},
	}
	for keyword, id := range genreIDs {
		routes[keyword] = CategoryRoute{Kind: CategoryGenre, GenreID: id}
	}
	return routes
}

// ResolveCategory looks a keyword up in the category table. Unknown keywords
// resolve to the popular collection rather than an error.
func ResolveCategory(keyword string) CategoryRoute {
	route, ok := categoryRoutes[strings.ToLower(strings.TrimSpace(keyword))]
	if !ok {
		return CategoryRoute{Kind: CategoryPopular}
	}
	return route
}

// browseCategories is the facet list shown by the front end, in display order.
var browseCategories = []models.Category{
	{ID: "trending", Name: "Trending Now"},
	{ID: "popular", Name: "Popular on Netflix"},
	{ID: "action", Name: "Action Thrillers"},
	{ID: "comedy", Name: "Comedies"},
	{ID: "documentary", Name: "Documentaries"},
	{ID: "horror", Name: "Horror Movies"},
	{ID: "romance", Name: "Romance"},
	{ID: "drama", Name: "Drama Series"},
}

// Categories returns a copy of the browse facet list.
func Categories() []models.Category {
	return append([]models.Category(nil), browseCategories...)
}
