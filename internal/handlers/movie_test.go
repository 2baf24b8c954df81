package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemate/reelrank/internal/config"
	"github.com/cinemate/reelrank/internal/services"
	"github.com/cinemate/reelrank/pkg/models"
)

// tmdbStub answers the subset of the TMDB API the handlers touch.
func tmdbStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			fmt.Fprint(w, `{"results":[{"key":"xyz","site":"YouTube","type":"Trailer"}]}`)
		case strings.HasPrefix(r.URL.Path, "/trending"):
			fmt.Fprint(w, `{"results":[{"id":1,"title":"T1","poster_path":"/t1.jpg"}]}`)
		default:
			fmt.Fprint(w, `{"id":3,"poster_path":"/c.jpg","vote_average":7.5,"overview":"about C"}`)
		}
	}))
}

func enrichmentForTests(t *testing.T, serverURL string) *services.EnrichmentService {
	t.Helper()
	cfg := &config.TMDBConfig{
		BaseURL:        serverURL,
		ImageBaseURL:   "https://image.tmdb.org/t/p/w500",
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
		},
		Breaker: config.BreakerConfig{
			FailureThreshold: 100,
			OpenTimeout:      time.Second,
			MaxHalfOpen:      1,
		},
	}
	return services.NewEnrichmentService(cfg, quietLogger(), nil)
}

func sessionForTests(t *testing.T) *services.SessionService {
	t.Helper()
	return services.NewSessionService(&config.SessionConfig{
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		HistorySize: 5,
	}, quietLogger(), nil)
}

func withSession(sessionID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("session_id", sessionID)
		c.Next()
	}
}

func TestMovieHandler_Search(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := tmdbStub(t)
	defer server.Close()

	handler := NewMovieHandler(testCatalog(t), enrichmentForTests(t, server.URL), sessionForTests(t), quietLogger())

	router := gin.New()
	router.GET("/movies", handler.Search)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies?q=b", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, "B", response.Results[0].Title)
}

func TestMovieHandler_SearchRequiresQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := tmdbStub(t)
	defer server.Close()

	handler := NewMovieHandler(testCatalog(t), enrichmentForTests(t, server.URL), sessionForTests(t), quietLogger())

	router := gin.New()
	router.GET("/movies", handler.Search)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMovieHandler_GetRecordsViewAndEnriches(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := tmdbStub(t)
	defer server.Close()

	session := sessionForTests(t)
	handler := NewMovieHandler(testCatalog(t), enrichmentForTests(t, server.URL), session, quietLogger())

	sessionID := uuid.New()
	router := gin.New()
	router.Use(withSession(sessionID))
	router.GET("/movies/:id", handler.Get)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/3", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response models.MovieDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(3), response.MovieID)
	assert.Equal(t, "C", response.Title)
	require.NotNil(t, response.Poster)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/c.jpg", *response.Poster)
	require.NotNil(t, response.Trailer)
	assert.Equal(t, "https://youtu.be/xyz", *response.Trailer)
	require.NotNil(t, response.Details)
	assert.Equal(t, "about C", response.Details.Overview)

	// The view landed in this session's history.
	ids, err := session.ViewHistory(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

func TestMovieHandler_GetUnknownMovie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := tmdbStub(t)
	defer server.Close()

	handler := NewMovieHandler(testCatalog(t), enrichmentForTests(t, server.URL), sessionForTests(t), quietLogger())

	router := gin.New()
	router.GET("/movies/:id", handler.Get)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/42", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MOVIE_NOT_FOUND", body["error"]["code"])
}

func TestMovieHandler_Random(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := tmdbStub(t)
	defer server.Close()

	handler := NewMovieHandler(testCatalog(t), enrichmentForTests(t, server.URL), sessionForTests(t), quietLogger())

	router := gin.New()
	router.GET("/movies/random", handler.Random)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/random", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response models.RandomMovieResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, []string{"A", "B", "C"}, response.Title)
}

func TestMovieHandler_GetDegradesWhenEnrichmentIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	handler := NewMovieHandler(testCatalog(t), enrichmentForTests(t, server.URL), sessionForTests(t), quietLogger())

	router := gin.New()
	router.GET("/movies/:id", handler.Get)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/3", nil)
	router.ServeHTTP(w, req)

	// The panel still renders; only the visual payload is missing.
	require.Equal(t, http.StatusOK, w.Code)

	var response models.MovieDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "C", response.Title)
	assert.Nil(t, response.Poster)
	assert.Nil(t, response.Trailer)
	assert.Nil(t, response.Details)
}
