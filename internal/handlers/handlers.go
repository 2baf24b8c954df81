package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Movie          *MovieHandler
	Recommendation *RecommendationHandler
	Trending       *TrendingHandler
	Session        *SessionHandler
}

func New(logger *logrus.Logger, c *catalog.Catalog, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Movie:          NewMovieHandler(c, services.Enrichment, services.Session, logger),
		Recommendation: NewRecommendationHandler(services.Orchestrator, logger),
		Trending:       NewTrendingHandler(services.Enrichment, logger),
		Session:        NewSessionHandler(c, services.Session, services.Enrichment, logger),
	}
}
