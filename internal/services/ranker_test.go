package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/pkg/models"
)

func rankerFixture(t *testing.T, movies []models.Movie, similarity [][]float64) *RankerService {
	t.Helper()
	c, err := catalog.New(movies, similarity)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewRankerService(c, logger)
}

func abcRanker(t *testing.T) *RankerService {
	return rankerFixture(t,
		[]models.Movie{
			{ID: 1, Title: "A"},
			{ID: 2, Title: "B"},
			{ID: 3, Title: "C"},
		},
		[][]float64{
			{1.0, 0.9, 0.9},
			{0.9, 1.0, 0.5},
			{0.9, 0.5, 1.0},
		},
	)
}

func TestRanker_TieBreakPreservesRowOrder(t *testing.T) {
	// Row for A is [1.0, 0.9, 0.9]: B and C tie at 0.9 and must come
	// back in catalog order, B first.
	ranker := abcRanker(t)

	ranked, err := ranker.Recommend("A", 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "B", ranked[0].Title)
	assert.Equal(t, "C", ranked[1].Title)
	assert.Equal(t, 1, ranked[0].Position)
	assert.Equal(t, 2, ranked[1].Position)
}

func TestRanker_NeverIncludesQueryMovie(t *testing.T) {
	ranker := abcRanker(t)

	for _, title := range []string{"A", "B", "C"} {
		ranked, err := ranker.Recommend(title, 5)
		require.NoError(t, err)
		for _, rec := range ranked {
			assert.NotEqual(t, title, rec.Title)
		}
	}
}

func TestRanker_OutputLength(t *testing.T) {
	ranker := abcRanker(t)

	tests := []struct {
		name string
		k    int
		want int
	}{
		{name: "k below catalog size", k: 1, want: 1},
		{name: "k equals candidates", k: 2, want: 2},
		{name: "k exceeds candidates", k: 10, want: 2},
		{name: "k zero falls back to default", k: 0, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked, err := ranker.Recommend("A", tt.k)
			require.NoError(t, err)
			assert.Len(t, ranked, tt.want)
		})
	}
}

func TestRanker_ScoresDescend(t *testing.T) {
	ranker := rankerFixture(t,
		[]models.Movie{
			{ID: 1, Title: "A"},
			{ID: 2, Title: "B"},
			{ID: 3, Title: "C"},
			{ID: 4, Title: "D"},
			{ID: 5, Title: "E"},
		},
		[][]float64{
			{1.0, 0.2, 0.8, 0.5, 0.8},
			{0.2, 1.0, 0.3, 0.1, 0.4},
			{0.8, 0.3, 1.0, 0.6, 0.2},
			{0.5, 0.1, 0.6, 1.0, 0.7},
			{0.8, 0.4, 0.2, 0.7, 1.0},
		},
	)

	ranked, err := ranker.Recommend("A", 4)
	require.NoError(t, err)
	require.Len(t, ranked, 4)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	// 0.8 tie between C (row 2) and E (row 4): C first.
	assert.Equal(t, "C", ranked[0].Title)
	assert.Equal(t, "E", ranked[1].Title)
}

func TestRanker_UnknownTitle(t *testing.T) {
	ranker := abcRanker(t)

	_, err := ranker.Recommend("Missing", 5)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRanker_DuplicateTitleUsesFirstMatch(t *testing.T) {
	ranker := rankerFixture(t,
		[]models.Movie{
			{ID: 10, Title: "Dune"},
			{ID: 20, Title: "Dune"},
			{ID: 30, Title: "Alien"},
		},
		[][]float64{
			{1.0, 0.3, 0.9},
			{0.3, 1.0, 0.4},
			{0.9, 0.4, 1.0},
		},
	)

	// First "Dune" is row 0; its best candidate is Alien at 0.9.
	ranked, err := ranker.Recommend("Dune", 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Alien", ranked[0].Title)
	assert.InDelta(t, 0.9, ranked[0].Score, 1e-9)
}

func TestRanker_RecommendByID(t *testing.T) {
	ranker := abcRanker(t)

	ranked, err := ranker.RecommendByID(2, 5)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "A", ranked[0].Title)
	assert.Equal(t, "C", ranked[1].Title)

	_, err = ranker.RecommendByID(42, 5)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
