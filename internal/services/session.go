package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/config"
	"github.com/cinemate/reelrank/pkg/models"
)

// SessionService owns per-session state: issued session tokens and the
// bounded view history. Sessions never share state; each history has a
// single writer. History lives in Redis keyed by session id so it
// survives process restarts; when Redis is down the service degrades
// to an in-process log rather than failing the render.
type SessionService struct {
	config      *config.SessionConfig
	logger      *logrus.Logger
	redisClient *redis.Client
	jwtSecret   []byte

	mu       sync.Mutex
	fallback map[uuid.UUID]*History
}

func NewSessionService(cfg *config.SessionConfig, logger *logrus.Logger, redisClient *redis.Client) *SessionService {
	return &SessionService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		jwtSecret:   []byte(cfg.JWTSecret),
		fallback:    make(map[uuid.UUID]*History),
	}
}

// NewSession mints a session id and its signed token.
func (s *SessionService) NewSession() (uuid.UUID, string, error) {
	sessionID := uuid.New()
	token, err := s.issueToken(sessionID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return sessionID, token, nil
}

func (s *SessionService) issueToken(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "github.com/cinemate/reelrank",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses a session token and returns its claims.
func (s *SessionService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}
	return claims, nil
}

// RecordView appends a movie id to the session's history, skipping
// consecutive duplicates and evicting the oldest entry past capacity.
func (s *SessionService) RecordView(ctx context.Context, sessionID uuid.UUID, movieID int64) error {
	if s.redisClient == nil {
		s.recordFallback(sessionID, movieID)
		return nil
	}

	key := historyKey(sessionID)

	head, err := s.redisClient.LIndex(ctx, key, 0).Result()
	if err != nil && err != redis.Nil {
		s.logger.WithError(err).Warn("History store unavailable, using in-process history")
		s.recordFallback(sessionID, movieID)
		return nil
	}
	if err == nil && head == strconv.FormatInt(movieID, 10) {
		return nil
	}

	pipe := s.redisClient.Pipeline()
	pipe.LPush(ctx, key, movieID)
	pipe.LTrim(ctx, key, 0, int64(s.historySize()-1))
	pipe.Expire(ctx, key, s.config.TokenTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to persist view history")
		s.recordFallback(sessionID, movieID)
	}
	return nil
}

// ViewHistory returns the session's recorded movie ids, most recent
// first.
func (s *SessionService) ViewHistory(ctx context.Context, sessionID uuid.UUID) ([]int64, error) {
	if s.redisClient == nil {
		return s.listFallback(sessionID), nil
	}

	values, err := s.redisClient.LRange(ctx, historyKey(sessionID), 0, int64(s.historySize()-1)).Result()
	if err != nil {
		s.logger.WithError(err).Warn("History store unavailable, using in-process history")
		return s.listFallback(sessionID), nil
	}

	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *SessionService) historySize() int {
	if s.config.HistorySize > 0 {
		return s.config.HistorySize
	}
	return 5
}

func (s *SessionService) recordFallback(sessionID uuid.UUID, movieID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.fallback[sessionID]
	if !ok {
		h = NewHistory(s.historySize())
		s.fallback[sessionID] = h
	}
	h.Record(movieID)
}

func (s *SessionService) listFallback(sessionID uuid.UUID) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.fallback[sessionID]
	if !ok {
		return nil
	}
	return h.List()
}

func historyKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("history:%s", sessionID.String())
}
