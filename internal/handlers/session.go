package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/internal/middleware"
	"github.com/cinemate/reelrank/internal/services"
	"github.com/cinemate/reelrank/pkg/models"
)

type SessionHandler struct {
	catalog    *catalog.Catalog
	session    *services.SessionService
	enrichment *services.EnrichmentService
	logger     *logrus.Logger
}

func NewSessionHandler(
	c *catalog.Catalog,
	session *services.SessionService,
	enrichment *services.EnrichmentService,
	logger *logrus.Logger,
) *SessionHandler {
	return &SessionHandler{
		catalog:    c,
		session:    session,
		enrichment: enrichment,
		logger:     logger,
	}
}

// GetHistory returns the session's recently viewed movies, most recent
// first, enriched with posters for the sidebar.
func (h *SessionHandler) GetHistory(c *gin.Context) {
	sessionID := middleware.SessionFromContext(c)

	ids, err := h.session.ViewHistory(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read view history")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "HISTORY_READ_FAILED",
				"message": "Failed to read view history",
			},
		})
		return
	}

	entries := make([]models.HistoryEntry, 0, len(ids))
	for _, id := range ids {
		movie, err := h.catalog.ByID(id)
		if err != nil {
			// A recorded id can drop out of a reloaded catalog; skip
			// it rather than breaking the sidebar.
			continue
		}

		poster, err := h.enrichment.Poster(c.Request.Context(), movie.ID)
		if err != nil && !errors.Is(err, services.ErrEnrichmentUnavailable) {
			h.logger.WithError(err).Warn("Unexpected poster error")
		}

		entries = append(entries, models.HistoryEntry{
			MovieID:  movie.ID,
			Title:    movie.Title,
			Poster:   poster,
			ViewedAt: time.Now().Unix(),
		})
	}

	c.JSON(http.StatusOK, models.HistoryResponse{
		SessionID: sessionID,
		Entries:   entries,
	})
}

// RecordView appends a movie to the session history.
func (h *SessionHandler) RecordView(c *gin.Context) {
	var req models.RecordHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	if _, err := h.catalog.ByID(req.MovieID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "MOVIE_NOT_FOUND",
					"message": "Movie not found",
				},
			})
			return
		}
	}

	sessionID := middleware.SessionFromContext(c)
	if err := h.session.RecordView(c.Request.Context(), sessionID, req.MovieID); err != nil {
		h.logger.WithError(err).Error("Failed to record view history")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "HISTORY_WRITE_FAILED",
				"message": "Failed to record view",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "View recorded",
	})
}
