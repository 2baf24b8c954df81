package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/services"
	"github.com/cinemate/reelrank/pkg/models"
)

type TrendingHandler struct {
	enrichment *services.EnrichmentService
	logger     *logrus.Logger
}

func NewTrendingHandler(enrichment *services.EnrichmentService, logger *logrus.Logger) *TrendingHandler {
	return &TrendingHandler{
		enrichment: enrichment,
		logger:     logger,
	}
}

// Get returns the top of the weekly trending feed. A dead feed is not
// an error surface: the strip renders empty rather than failing the
// page.
func (h *TrendingHandler) Get(c *gin.Context) {
	trending, err := h.enrichment.Trending(c.Request.Context())
	if err != nil {
		if !errors.Is(err, services.ErrEnrichmentUnavailable) {
			h.logger.WithError(err).Warn("Unexpected trending error")
		}
		trending = []models.TrendingMovie{}
	}
	if trending == nil {
		trending = []models.TrendingMovie{}
	}

	c.JSON(http.StatusOK, models.TrendingResponse{Results: trending})
}
