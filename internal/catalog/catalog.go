package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/mat"

	"github.com/cinemate/reelrank/pkg/models"
)

var (
	// ErrNotFound is returned when a title or id has no catalog match.
	// It must reach the caller: an unknown title usually means the
	// catalog and the caller's view of it have drifted apart.
	ErrNotFound = errors.New("movie not found in catalog")

	// ErrDataIntegrity is returned when the similarity matrix does not
	// line up with the catalog. The process cannot serve correct
	// recommendations in that state, so loading treats this as fatal.
	ErrDataIntegrity = errors.New("catalog and similarity matrix are misaligned")
)

// Catalog holds the precomputed movie list and pairwise similarity
// matrix. Row order is fixed at load time and defines the index space
// of the matrix: row i of the matrix scores the movie at catalog
// position i against every other row. The structure is immutable after
// construction and safe for concurrent readers without locking.
type Catalog struct {
	movies     []models.Movie
	byID       map[int64]int
	normalized []string
	similarity *mat.Dense
}

// New builds a catalog from an ordered movie list and a row-major
// similarity matrix. The matrix must be square with dimension equal to
// the number of movies; anything else is ErrDataIntegrity.
func New(movies []models.Movie, similarity [][]float64) (*Catalog, error) {
	n := len(movies)
	if n == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrDataIntegrity)
	}
	if len(similarity) != n {
		return nil, fmt.Errorf("%w: catalog has %d movies, matrix has %d rows",
			ErrDataIntegrity, n, len(similarity))
	}

	data := make([]float64, 0, n*n)
	for i, row := range similarity {
		if len(row) != n {
			return nil, fmt.Errorf("%w: matrix row %d has %d columns, want %d",
				ErrDataIntegrity, i, len(row), n)
		}
		data = append(data, row...)
	}

	c := &Catalog{
		movies:     movies,
		byID:       make(map[int64]int, n),
		normalized: make([]string, n),
		similarity: mat.NewDense(n, n, data),
	}

	for i, m := range movies {
		// First occurrence wins, mirroring title resolution. Duplicate
		// ids should not happen but must not shadow earlier rows.
		if _, exists := c.byID[m.ID]; !exists {
			c.byID[m.ID] = i
		}
		c.normalized[i] = foldTitle(m.Title)
	}

	return c, nil
}

// Size returns the number of catalog rows.
func (c *Catalog) Size() int {
	return len(c.movies)
}

// ByIndex returns the movie at catalog position i.
func (c *Catalog) ByIndex(i int) (models.Movie, error) {
	if i < 0 || i >= len(c.movies) {
		return models.Movie{}, fmt.Errorf("%w: index %d out of range", ErrNotFound, i)
	}
	return c.movies[i], nil
}

// ByID resolves a movie id. This is the primary lookup contract;
// title resolution is a convenience wrapper on top of row order.
func (c *Catalog) ByID(id int64) (models.Movie, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Movie{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return c.movies[i], nil
}

// IndexOfID returns the catalog row for a movie id.
func (c *Catalog) IndexOfID(id int64) (int, error) {
	i, ok := c.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return i, nil
}

// IndexOfTitle resolves a title to a catalog row by exact match.
// Titles are not guaranteed unique; the first match in row order wins.
func (c *Catalog) IndexOfTitle(title string) (int, error) {
	for i, m := range c.movies {
		if m.Title == title {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: title %q", ErrNotFound, title)
}

// SimilarityRow returns a copy of matrix row i: the scores of every
// catalog entry against the movie at position i.
func (c *Catalog) SimilarityRow(i int) []float64 {
	return mat.Row(nil, i, c.similarity)
}

// Search returns up to limit catalog entries whose titles contain the
// query, matched case- and diacritic-insensitively, in row order.
func (c *Catalog) Search(query string, limit int) []models.Movie {
	folded := foldTitle(query)
	if folded == "" {
		return nil
	}

	var results []models.Movie
	for i, t := range c.normalized {
		if strings.Contains(t, folded) {
			results = append(results, c.movies[i])
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results
}

// Random returns a uniformly chosen catalog entry. Repeats are not
// avoided. Pass a seeded source for reproducibility; a nil source uses
// the shared global one.
func (c *Catalog) Random(r *rand.Rand) models.Movie {
	if r == nil {
		return c.movies[rand.Intn(len(c.movies))]
	}
	return c.movies[r.Intn(len(c.movies))]
}

var titleFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldTitle(s string) string {
	folded, _, err := transform.String(titleFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
