package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemate/reelrank/pkg/models"
)

func testMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B"},
		{ID: 3, Title: "C"},
	}
}

func testSimilarity() [][]float64 {
	return [][]float64{
		{1.0, 0.9, 0.9},
		{0.9, 1.0, 0.5},
		{0.9, 0.5, 1.0},
	}
}

func TestNew_IntegrityChecks(t *testing.T) {
	tests := []struct {
		name       string
		movies     []models.Movie
		similarity [][]float64
		wantErr    bool
	}{
		{
			name:       "aligned catalog and matrix",
			movies:     testMovies(),
			similarity: testSimilarity(),
			wantErr:    false,
		},
		{
			name:       "empty catalog",
			movies:     nil,
			similarity: nil,
			wantErr:    true,
		},
		{
			name:   "row count mismatch",
			movies: testMovies(),
			similarity: [][]float64{
				{1.0, 0.9},
				{0.9, 1.0},
			},
			wantErr: true,
		},
		{
			name:   "ragged row",
			movies: testMovies(),
			similarity: [][]float64{
				{1.0, 0.9, 0.9},
				{0.9, 1.0},
				{0.9, 0.5, 1.0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.movies, tt.similarity)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDataIntegrity)
				assert.Nil(t, c)
			} else {
				require.NoError(t, err)
				assert.Equal(t, len(tt.movies), c.Size())
			}
		})
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c, err := New(testMovies(), testSimilarity())
	require.NoError(t, err)

	index, err := c.IndexOfTitle("B")
	require.NoError(t, err)
	assert.Equal(t, 1, index)

	_, err = c.IndexOfTitle("Missing")
	assert.ErrorIs(t, err, ErrNotFound)

	movie, err := c.ByID(3)
	require.NoError(t, err)
	assert.Equal(t, "C", movie.Title)

	_, err = c.ByID(42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.ByIndex(3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_DuplicateTitlesResolveToFirstMatch(t *testing.T) {
	movies := []models.Movie{
		{ID: 10, Title: "Dune"},
		{ID: 20, Title: "Dune"},
		{ID: 30, Title: "Alien"},
	}
	c, err := New(movies, testSimilarity())
	require.NoError(t, err)

	index, err := c.IndexOfTitle("Dune")
	require.NoError(t, err)
	assert.Equal(t, 0, index)
}

func TestCatalog_SimilarityRow(t *testing.T) {
	c, err := New(testMovies(), testSimilarity())
	require.NoError(t, err)

	row := c.SimilarityRow(0)
	assert.Equal(t, []float64{1.0, 0.9, 0.9}, row)

	// Returned row is a copy; mutating it must not touch the matrix.
	row[1] = 0.0
	assert.Equal(t, []float64{1.0, 0.9, 0.9}, c.SimilarityRow(0))
}

func TestCatalog_Search(t *testing.T) {
	movies := []models.Movie{
		{ID: 1, Title: "Amélie"},
		{ID: 2, Title: "The Godfather"},
		{ID: 3, Title: "The Godfather Part II"},
	}
	similarity := [][]float64{
		{1.0, 0.1, 0.2},
		{0.1, 1.0, 0.9},
		{0.2, 0.9, 1.0},
	}
	c, err := New(movies, similarity)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		limit int
		want  []int64
	}{
		{name: "case insensitive", query: "godfather", limit: 0, want: []int64{2, 3}},
		{name: "diacritic folding", query: "amelie", limit: 0, want: []int64{1}},
		{name: "limit respected", query: "godfather", limit: 1, want: []int64{2}},
		{name: "no match", query: "zzz", limit: 0, want: nil},
		{name: "empty query", query: "  ", limit: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := c.Search(tt.query, tt.limit)
			var ids []int64
			for _, m := range results {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCatalog_Random(t *testing.T) {
	c, err := New(testMovies(), testSimilarity())
	require.NoError(t, err)

	r := rand.New(rand.NewSource(1))
	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		seen[c.Random(r).ID] = true
	}
	// Uniform over three rows; 100 draws should hit all of them.
	assert.Len(t, seen, 3)
}
