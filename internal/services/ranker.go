package services

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/pkg/models"
)

// DefaultRecommendationCount is the grid size the presentation layer
// renders when the caller does not ask for a specific count.
const DefaultRecommendationCount = 5

// RankerService answers similarity queries against the precomputed
// matrix. It is a pure function over the immutable catalog: no side
// effects, safe for any number of concurrent sessions.
type RankerService struct {
	catalog *catalog.Catalog
	logger  *logrus.Logger
}

func NewRankerService(c *catalog.Catalog, logger *logrus.Logger) *RankerService {
	return &RankerService{
		catalog: c,
		logger:  logger,
	}
}

// Recommend resolves a title to a catalog row and ranks against it.
// Titles are not unique; the first match in row order wins.
// RecommendByID is the primary contract.
func (s *RankerService) Recommend(title string, k int) ([]models.RankedMovie, error) {
	index, err := s.catalog.IndexOfTitle(title)
	if err != nil {
		return nil, fmt.Errorf("recommend %q: %w", title, err)
	}
	return s.rankRow(index, k), nil
}

// RecommendByID ranks against the catalog row of the given movie id.
func (s *RankerService) RecommendByID(id int64, k int) ([]models.RankedMovie, error) {
	index, err := s.catalog.IndexOfID(id)
	if err != nil {
		return nil, fmt.Errorf("recommend id %d: %w", id, err)
	}
	return s.rankRow(index, k), nil
}

// rankRow sorts matrix row index descending by score and returns the
// top k candidates, self excluded. The sort must stay stable:
// equal-score candidates keep catalog row order, and callers observe
// that order.
func (s *RankerService) rankRow(index, k int) []models.RankedMovie {
	if k <= 0 {
		k = DefaultRecommendationCount
	}

	row := s.catalog.SimilarityRow(index)

	order := make([]int, len(row))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})

	// The query row scores itself maximally by construction, so it
	// always leads the ranking; skipping it by index rather than by
	// position keeps the guarantee even on degenerate matrices.
	ranked := make([]models.RankedMovie, 0, k)
	for _, candidate := range order {
		if candidate == index {
			continue
		}
		movie, err := s.catalog.ByIndex(candidate)
		if err != nil {
			continue
		}
		ranked = append(ranked, models.RankedMovie{
			MovieID:  movie.ID,
			Title:    movie.Title,
			Score:    row[candidate],
			Position: len(ranked) + 1,
		})
		if len(ranked) == k {
			break
		}
	}

	return ranked
}
