package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cinemate/reelrank/internal/config"
	"github.com/cinemate/reelrank/pkg/models"
)

// ErrEnrichmentUnavailable marks a metadata call that failed after all
// retries. Always recoverable: callers degrade the affected entry to
// nil payload and keep rendering. Never aborts a ranked list.
var ErrEnrichmentUnavailable = errors.New("metadata enrichment unavailable")

const (
	trendingLimit = 5
	castLimit     = 5
)

// EnrichmentService fetches display metadata (posters, trailers,
// details, trending) from the TMDB API. Calls retry with exponential
// backoff on 500/502/504 and run behind a circuit breaker so a dead
// upstream fails fast instead of stalling every render slot.
type EnrichmentService struct {
	config     *config.TMDBConfig
	logger     *logrus.Logger
	cache      *redis.Client
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	failures   *prometheus.CounterVec
}

func NewEnrichmentService(cfg *config.TMDBConfig, logger *logrus.Logger, cache *redis.Client) *EnrichmentService {
	s := &EnrichmentService{
		config: cfg,
		logger: logger,
		cache:  cache,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}

	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: cfg.Breaker.MaxHalfOpen,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	s.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichment_failures_total",
		Help: "Metadata API calls that failed after retries, by endpoint",
	}, []string{"endpoint"})

	if err := prometheus.Register(s.failures); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			s.failures = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			logger.WithError(err).Warn("Failed to register enrichment_failures_total metric")
		}
	}

	return s
}

// Poster returns the w500 poster URL for a movie, or nil when the
// movie has no poster or the API is unavailable.
func (s *EnrichmentService) Poster(ctx context.Context, movieID int64) (*string, error) {
	body, err := s.fetch(ctx, "movie", fmt.Sprintf("/movie/%d", movieID), nil)
	if err != nil {
		return nil, err
	}

	var payload tmdbMovie
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding poster response: %v", ErrEnrichmentUnavailable, err)
	}

	return s.imageURL(payload.PosterPath), nil
}

// Trailer returns a YouTube link for the movie's first video of type
// Trailer, or nil when none exists.
func (s *EnrichmentService) Trailer(ctx context.Context, movieID int64) (*string, error) {
	body, err := s.fetch(ctx, "videos", fmt.Sprintf("/movie/%d/videos", movieID), nil)
	if err != nil {
		return nil, err
	}

	var payload tmdbVideoList
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding videos response: %v", ErrEnrichmentUnavailable, err)
	}

	for _, video := range payload.Results {
		if video.Type == "Trailer" && video.Site == "YouTube" {
			u := "https://youtu.be/" + video.Key
			return &u, nil
		}
	}
	return nil, nil
}

// Details returns the full detail-panel payload for a movie. Responses
// are cached so repeated selections of the same movie do not hit the
// API.
func (s *EnrichmentService) Details(ctx context.Context, movieID int64) (*models.MovieDetails, error) {
	cacheKey := fmt.Sprintf("tmdb:details:%d", movieID)

	var cached models.MovieDetails
	if s.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,videos")

	body, err := s.fetch(ctx, "details", fmt.Sprintf("/movie/%d", movieID), params)
	if err != nil {
		return nil, err
	}

	var payload tmdbMovie
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding details response: %v", ErrEnrichmentUnavailable, err)
	}

	details := s.buildDetails(&payload)
	s.setCached(ctx, cacheKey, details)

	return details, nil
}

// Trending returns the top entries of the weekly trending feed.
func (s *EnrichmentService) Trending(ctx context.Context) ([]models.TrendingMovie, error) {
	cacheKey := "tmdb:trending:week"

	var cached []models.TrendingMovie
	if s.getCached(ctx, cacheKey, &cached) {
		return cached, nil
	}

	body, err := s.fetch(ctx, "trending", "/trending/movie/week", nil)
	if err != nil {
		return nil, err
	}

	var payload tmdbTrendingList
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding trending response: %v", ErrEnrichmentUnavailable, err)
	}

	trending := make([]models.TrendingMovie, 0, trendingLimit)
	for _, entry := range payload.Results {
		if len(trending) == trendingLimit {
			break
		}
		trending = append(trending, models.TrendingMovie{
			MovieID: entry.ID,
			Title:   entry.Title,
			Poster:  s.imageURL(entry.PosterPath),
		})
	}

	s.setCached(ctx, cacheKey, trending)

	return trending, nil
}

func (s *EnrichmentService) buildDetails(payload *tmdbMovie) *models.MovieDetails {
	var directors []string
	for _, crew := range payload.Credits.Crew {
		if crew.Job == "Director" {
			directors = append(directors, crew.Name)
		}
	}

	cast := make([]models.CastMember, 0, castLimit)
	for _, member := range payload.Credits.Cast {
		if len(cast) == castLimit {
			break
		}
		cast = append(cast, models.CastMember{
			Name:      member.Name,
			Character: member.Character,
			Profile:   s.imageURL(member.ProfilePath),
		})
	}

	genres := make([]string, 0, len(payload.Genres))
	for _, g := range payload.Genres {
		genres = append(genres, g.Name)
	}

	languages := make([]string, 0, len(payload.SpokenLanguages))
	for _, l := range payload.SpokenLanguages {
		languages = append(languages, l.EnglishName)
	}

	return &models.MovieDetails{
		Rating:      payload.VoteAverage,
		VoteCount:   payload.VoteCount,
		ReleaseDate: payload.ReleaseDate,
		Runtime:     payload.Runtime,
		Tagline:     payload.Tagline,
		Overview:    payload.Overview,
		Director:    strings.Join(directors, ", "),
		Cast:        cast,
		Genres:      strings.Join(genres, ", "),
		Budget:      formatDollars(payload.Budget),
		Revenue:     formatDollars(payload.Revenue),
		AvailableIn: strings.Join(languages, ", "),
	}
}

// fetch runs one API call through the circuit breaker and the retry
// policy, returning the raw response body.
func (s *EnrichmentService) fetch(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	body, err := s.breaker.Execute(func() ([]byte, error) {
		return s.fetchWithRetry(ctx, path, params)
	})
	if err != nil {
		s.failures.WithLabelValues(endpoint).Inc()
		s.logger.WithError(err).WithField("endpoint", endpoint).Warn("Enrichment call failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrEnrichmentUnavailable, endpoint, err)
	}
	return body, nil
}

func (s *EnrichmentService) fetchWithRetry(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", s.config.APIKey)
	requestURL := s.config.BaseURL + path + "?" + params.Encode()

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err = io.ReadAll(resp.Body)
			return err
		case isRetryableStatus(resp.StatusCode):
			return fmt.Errorf("tmdb returned %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("tmdb returned %d", resp.StatusCode))
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.Retry.InitialInterval
	policy.MaxInterval = s.config.Retry.MaxInterval
	policy.MaxElapsedTime = 0

	var maxRetries uint64
	if s.config.Retry.MaxAttempts > 1 {
		maxRetries = uint64(s.config.Retry.MaxAttempts - 1)
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// Retryable server errors, matching the upstream's transient failure
// modes: internal error, bad gateway, gateway timeout.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (s *EnrichmentService) imageURL(path string) *string {
	if path == "" {
		return nil
	}
	u := s.config.ImageBaseURL + path
	return &u
}

func (s *EnrichmentService) getCached(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to decode cached enrichment")
		return false
	}
	return true
}

func (s *EnrichmentService) setCached(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	ttl := s.config.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.cache.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to cache enrichment")
	}
}

var dollarPrinter = message.NewPrinter(language.English)

// formatDollars renders financials as "$1,234,567"; zero or unknown
// amounts render as "N/A".
func formatDollars(amount int64) string {
	if amount <= 0 {
		return "N/A"
	}
	return dollarPrinter.Sprintf("$%d", amount)
}

// TMDB wire shapes. Missing fields decode to zero values and are
// treated as absent, never as errors.
type tmdbMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	Tagline     string  `json:"tagline"`
	Overview    string  `json:"overview"`
	Budget      int64   `json:"budget"`
	Revenue     int64   `json:"revenue"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
	SpokenLanguages []struct {
		EnglishName string `json:"english_name"`
	} `json:"spoken_languages"`
	Credits struct {
		Cast []struct {
			Name        string `json:"name"`
			Character   string `json:"character"`
			ProfilePath string `json:"profile_path"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

type tmdbVideoList struct {
	Results []struct {
		Key  string `json:"key"`
		Site string `json:"site"`
		Type string `json:"type"`
	} `json:"results"`
}

type tmdbTrendingList struct {
	Results []struct {
		ID         int64  `json:"id"`
		Title      string `json:"title"`
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}
