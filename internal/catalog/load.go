package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/config"
	"github.com/cinemate/reelrank/internal/validation"
	"github.com/cinemate/reelrank/pkg/models"
)

// Load reads the two precomputed artifacts from disk, validates them
// against their JSON schemas and builds the catalog. Called once at
// startup; any failure here means the process cannot serve correct
// recommendations and must not start.
func Load(cfg *config.CatalogConfig, logger *logrus.Logger) (*Catalog, error) {
	validator, err := validation.NewArtifactValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build artifact validator: %w", err)
	}

	rawMovies, err := os.ReadFile(cfg.MoviesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read movie catalog %s: %w", cfg.MoviesPath, err)
	}
	if result := validator.ValidateCatalog(rawMovies); !result.Valid {
		return nil, fmt.Errorf("%w: invalid movie catalog %s: %s",
			ErrDataIntegrity, cfg.MoviesPath, result.Error())
	}

	var movies []models.Movie
	if err := json.Unmarshal(rawMovies, &movies); err != nil {
		return nil, fmt.Errorf("failed to decode movie catalog %s: %w", cfg.MoviesPath, err)
	}

	rawSimilarity, err := os.ReadFile(cfg.SimilarityPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read similarity matrix %s: %w", cfg.SimilarityPath, err)
	}
	if result := validator.ValidateSimilarityMatrix(rawSimilarity); !result.Valid {
		return nil, fmt.Errorf("%w: invalid similarity matrix %s: %s",
			ErrDataIntegrity, cfg.SimilarityPath, result.Error())
	}

	var similarity [][]float64
	if err := json.Unmarshal(rawSimilarity, &similarity); err != nil {
		return nil, fmt.Errorf("failed to decode similarity matrix %s: %w", cfg.SimilarityPath, err)
	}

	c, err := New(movies, similarity)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"movies": c.Size(),
		"matrix": fmt.Sprintf("%dx%d", c.Size(), c.Size()),
	}).Info("Catalog loaded")

	return c, nil
}
