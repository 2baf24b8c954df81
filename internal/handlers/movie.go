package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/internal/middleware"
	"github.com/cinemate/reelrank/internal/services"
	"github.com/cinemate/reelrank/pkg/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type MovieHandler struct {
	catalog    *catalog.Catalog
	enrichment *services.EnrichmentService
	session    *services.SessionService
	logger     *logrus.Logger
}

func NewMovieHandler(
	c *catalog.Catalog,
	enrichment *services.EnrichmentService,
	session *services.SessionService,
	logger *logrus.Logger,
) *MovieHandler {
	return &MovieHandler{
		catalog:    c,
		enrichment: enrichment,
		session:    session,
		logger:     logger,
	}
}

// Search backs the search-and-select control: substring match over
// catalog titles, case- and accent-insensitive, in catalog order.
func (h *MovieHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "MISSING_QUERY",
				"message": "Query parameter 'q' is required",
			},
		})
		return
	}

	limit := defaultSearchLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= maxSearchLimit {
			limit = parsed
		}
	}

	results := h.catalog.Search(query, limit)
	if results == nil {
		results = []models.Movie{}
	}

	c.JSON(http.StatusOK, models.SearchResponse{
		Query:   query,
		Results: results,
	})
}

// Random backs the surprise-me control: a uniformly chosen catalog
// entry with best-effort poster and trailer.
func (h *MovieHandler) Random(c *gin.Context) {
	movie := h.catalog.Random(nil)

	poster, err := h.enrichment.Poster(c.Request.Context(), movie.ID)
	if err != nil && !errors.Is(err, services.ErrEnrichmentUnavailable) {
		h.logger.WithError(err).Warn("Unexpected poster error")
	}
	trailer, err := h.enrichment.Trailer(c.Request.Context(), movie.ID)
	if err != nil && !errors.Is(err, services.ErrEnrichmentUnavailable) {
		h.logger.WithError(err).Warn("Unexpected trailer error")
	}

	c.JSON(http.StatusOK, models.RandomMovieResponse{
		MovieID: movie.ID,
		Title:   movie.Title,
		Poster:  poster,
		Trailer: trailer,
	})
}

// Get renders the detail panel for one movie and records the view in
// the session history. Enrichment failures degrade the payload to
// nulls; an unknown id is a hard 404, never a blank panel.
func (h *MovieHandler) Get(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_MOVIE_ID",
				"message": "Movie id must be an integer",
			},
		})
		return
	}

	movie, err := h.catalog.ByID(movieID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "MOVIE_NOT_FOUND",
					"message": "Movie not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "CATALOG_LOOKUP_FAILED",
				"message": "Failed to look up movie",
			},
		})
		return
	}

	sessionID := middleware.SessionFromContext(c)
	if err := h.session.RecordView(c.Request.Context(), sessionID, movie.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to record view history")
	}

	ctx := c.Request.Context()

	poster, err := h.enrichment.Poster(ctx, movie.ID)
	if err != nil && !errors.Is(err, services.ErrEnrichmentUnavailable) {
		h.logger.WithError(err).Warn("Unexpected poster error")
	}
	trailer, err := h.enrichment.Trailer(ctx, movie.ID)
	if err != nil && !errors.Is(err, services.ErrEnrichmentUnavailable) {
		h.logger.WithError(err).Warn("Unexpected trailer error")
	}
	details, err := h.enrichment.Details(ctx, movie.ID)
	if err != nil && !errors.Is(err, services.ErrEnrichmentUnavailable) {
		h.logger.WithError(err).Warn("Unexpected details error")
	}

	c.JSON(http.StatusOK, models.MovieDetailResponse{
		MovieID: movie.ID,
		Title:   movie.Title,
		Poster:  poster,
		Trailer: trailer,
		Details: details,
	})
}
