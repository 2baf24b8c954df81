package services

import (
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/internal/config"
	"github.com/cinemate/reelrank/internal/database"
)

type Services struct {
	Health       *HealthService
	Session      *SessionService
	RateLimit    *RateLimitService
	Ranker       *RankerService
	Enrichment   *EnrichmentService
	Orchestrator *RecommendationOrchestrator
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, c *catalog.Catalog) (*Services, error) {
	healthService := NewHealthService(logger, db, c)
	sessionService := NewSessionService(&cfg.Session, logger, db.Redis.Sessions)
	rateLimitService := NewRateLimitService(&cfg.Session, logger, db.Redis.Sessions)

	rankerService := NewRankerService(c, logger)
	enrichmentService := NewEnrichmentService(&cfg.TMDB, logger, db.Redis.Cache)

	orchestrator := NewRecommendationOrchestrator(rankerService, enrichmentService, c, logger)

	return &Services{
		Health:       healthService,
		Session:      sessionService,
		RateLimit:    rateLimitService,
		Ranker:       rankerService,
		Enrichment:   enrichmentService,
		Orchestrator: orchestrator,
	}, nil
}
