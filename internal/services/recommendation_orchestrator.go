package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/pkg/models"
)

// Enricher is the slice of EnrichmentService the orchestrator needs.
type Enricher interface {
	Poster(ctx context.Context, movieID int64) (*string, error)
	Trailer(ctx context.Context, movieID int64) (*string, error)
}

// RecommendationOrchestrator combines the ranker with per-entry
// enrichment. Entries render in the exact rank order the ranker
// produced; enrichment happens sequentially, one entry at a time, and
// a failed fetch degrades only that entry's visual payload. Ranking
// errors propagate, enrichment errors never do.
type RecommendationOrchestrator struct {
	ranker   *RankerService
	enricher Enricher
	catalog  *catalog.Catalog
	logger   *logrus.Logger
}

func NewRecommendationOrchestrator(
	ranker *RankerService,
	enricher Enricher,
	c *catalog.Catalog,
	logger *logrus.Logger,
) *RecommendationOrchestrator {
	return &RecommendationOrchestrator{
		ranker:   ranker,
		enricher: enricher,
		catalog:  c,
		logger:   logger,
	}
}

// RecommendByID ranks against the movie's catalog row and enriches
// each recommendation with poster and trailer links.
func (o *RecommendationOrchestrator) RecommendByID(ctx context.Context, movieID int64, count int) (*models.RecommendationResponse, error) {
	movie, err := o.catalog.ByID(movieID)
	if err != nil {
		return nil, err
	}

	ranked, err := o.ranker.RecommendByID(movieID, count)
	if err != nil {
		return nil, err
	}

	return o.enrich(ctx, movie, ranked), nil
}

// RecommendByTitle is the title-based convenience entry point; the
// first catalog match wins on duplicate titles.
func (o *RecommendationOrchestrator) RecommendByTitle(ctx context.Context, title string, count int) (*models.RecommendationResponse, error) {
	index, err := o.catalog.IndexOfTitle(title)
	if err != nil {
		return nil, err
	}
	movie, err := o.catalog.ByIndex(index)
	if err != nil {
		return nil, err
	}

	ranked, err := o.ranker.Recommend(title, count)
	if err != nil {
		return nil, err
	}

	return o.enrich(ctx, movie, ranked), nil
}

func (o *RecommendationOrchestrator) enrich(ctx context.Context, movie models.Movie, ranked []models.RankedMovie) *models.RecommendationResponse {
	recommendations := make([]models.Recommendation, 0, len(ranked))
	for _, entry := range ranked {
		poster, err := o.enricher.Poster(ctx, entry.MovieID)
		if err != nil && !errors.Is(err, ErrEnrichmentUnavailable) {
			o.logger.WithError(err).WithField("movie_id", entry.MovieID).Warn("Unexpected poster error")
		}

		trailer, err := o.enricher.Trailer(ctx, entry.MovieID)
		if err != nil && !errors.Is(err, ErrEnrichmentUnavailable) {
			o.logger.WithError(err).WithField("movie_id", entry.MovieID).Warn("Unexpected trailer error")
		}

		recommendations = append(recommendations, models.Recommendation{
			MovieID: entry.MovieID,
			Title:   entry.Title,
			Score:   entry.Score,
			Poster:  poster,
			Trailer: trailer,
		})
	}

	return &models.RecommendationResponse{
		MovieID:         movie.ID,
		Title:           movie.Title,
		Recommendations: recommendations,
		GeneratedAt:     time.Now(),
	}
}
