package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the JWT payload carried in the session cookie. A
// session identifies one browser's interaction lifetime; it carries no
// user identity.
type SessionClaims struct {
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

type HistoryEntry struct {
	MovieID  int64   `json:"movie_id"`
	Title    string  `json:"title"`
	Poster   *string `json:"poster_url,omitempty"`
	ViewedAt int64   `json:"viewed_at"`
}

type HistoryResponse struct {
	SessionID uuid.UUID      `json:"session_id"`
	Entries   []HistoryEntry `json:"entries"`
}

type RecordHistoryRequest struct {
	MovieID int64 `json:"movie_id" binding:"required,gt=0"`
}

type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}
