package models

import "time"

// RankedMovie is the ranker's output unit: a catalog entry paired with
// its similarity score against the query movie. Position is 1-based
// rank order.
type RankedMovie struct {
	MovieID  int64   `json:"movie_id"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
}

// Recommendation is a ranked movie after enrichment. Poster and
// Trailer are nil when the metadata API was unavailable; the rank
// order is unaffected either way.
type Recommendation struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Poster  *string `json:"poster_url"`
	Trailer *string `json:"trailer_url"`
}

type RecommendationResponse struct {
	MovieID         int64            `json:"movie_id"`
	Title           string           `json:"title"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
