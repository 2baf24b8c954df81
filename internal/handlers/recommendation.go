package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/internal/services"
)

const maxRecommendationCount = 20

type RecommendationHandler struct {
	orchestrator *services.RecommendationOrchestrator
	logger       *logrus.Logger
}

func NewRecommendationHandler(
	orchestrator *services.RecommendationOrchestrator,
	logger *logrus.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// GetForMovie returns the ranked recommendation grid for a movie id.
func (h *RecommendationHandler) GetForMovie(c *gin.Context) {
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

	result, err := h.orchestrator.RecommendByID(c.Request.Context(), movieID, parseCount(c))
	if err != nil {
		h.respondError(c, movieID, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetByTitle is the title-based convenience endpoint. Duplicate titles
// resolve to the first catalog match.
func (h *RecommendationHandler) GetByTitle(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "MISSING_TITLE",
				"message": "Query parameter 'title' is required",
			},
		})
		return
	}

	result, err := h.orchestrator.RecommendByTitle(c.Request.Context(), title, parseCount(c))
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
		h.logger.WithError(err).WithField("title", title).Error("Failed to generate recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_GENERATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RecommendationHandler) respondError(c *gin.Context, movieID int64, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "MOVIE_NOT_FOUND",
				"message": "Movie not found",
			},
		})
		return
	}

	h.logger.WithError(err).WithField("movie_id", movieID).Error("Failed to generate recommendations")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "RECOMMENDATION_GENERATION_FAILED",
			"message": "Failed to generate recommendations",
		},
	})
}

func parseCount(c *gin.Context) int {
	count := services.DefaultRecommendationCount
	if countStr := c.Query("count"); countStr != "" {
		if parsed, err := strconv.Atoi(countStr); err == nil && parsed > 0 && parsed <= maxRecommendationCount {
			count = parsed
		}
	}
	return count
}
