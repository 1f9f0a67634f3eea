package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"

	"github.com/amaumene/streambox/internal/constants"
	"github.com/amaumene/streambox/internal/models"
	"github.com/amaumene/streambox/internal/services"
)

func (h *Handler) handleTrending(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	items := h.services.Catalog.ListTrending(c.Request.Context(), limit)
	respond(c, items, nil)
}

func (h *Handler) handleCategory(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	category := c.Param("category")
	items := h.services.Catalog.ListByCategory(c.Request.Context(), category, limit)
	respond(c, items, gin.H{"category": category})
}

func (h *Handler) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		fail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	items, err := h.services.Catalog.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, items, gin.H{"query": query, "count": len(items)})
}

// handleDetails fetches details and trailer concurrently and merges them.
func (h *Handler) handleDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	mediaType := c.DefaultQuery("media_type", constants.MediaTypeMovie)
	if mediaType != constants.MediaTypeMovie && mediaType != constants.MediaTypeTV {
		fail(c, http.StatusBadRequest, "media_type must be movie or tv")
		return
	}

	ctx := c.Request.Context()
	var (
		details    *models.CatalogDetails
		detailsErr error
		trailer    string
		hasTrailer bool
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		details, detailsErr = h.services.Catalog.GetDetails(ctx, id, mediaType)
	})
	wg.Go(func() {
		trailer, hasTrailer = h.services.Catalog.GetTrailer(ctx, id, mediaType)
	})
	wg.Wait()

	if detailsErr != nil {
		h.failWith(c, detailsErr)
		return
	}
	if hasTrailer {
		details.Trailer = &trailer
	}
	respond(c, details, nil)
}

func (h *Handler) handleCategories(c *gin.Context) {
	respond(c, services.Categories(), nil)
}
