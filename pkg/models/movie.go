package models

// Movie is one catalog entry. Catalog row order defines the index
// space of the similarity matrix, so a Movie's position is as much a
// part of its identity as its ID.
type Movie struct {
	ID    int64  `json:"movie_id"`
	Title string `json:"title"`
}

type CastMember struct {
	Name      string  `json:"name"`
	Character string  `json:"character"`
	Profile   *string `json:"profile_url,omitempty"`
}

// MovieDetails is the enriched detail-panel payload fetched from the
// metadata API. Every field may legitimately be empty; a missing field
// upstream is treated as absent, not as an error.
type MovieDetails struct {
	Rating      float64      `json:"rating"`
	VoteCount   int          `json:"vote_count"`
	ReleaseDate string       `json:"release_date"`
	Runtime     int          `json:"runtime"`
	Tagline     string       `json:"tagline,omitempty"`
	Overview    string       `json:"overview"`
	Director    string       `json:"director"`
	Cast        []CastMember `json:"cast"`
	Genres      string       `json:"genres"`
	Budget      string       `json:"budget"`
	Revenue     string       `json:"revenue"`
	AvailableIn string       `json:"available_in"`
}

type MovieDetailResponse struct {
	MovieID int64         `json:"movie_id"`
	Title   string        `json:"title"`
	Poster  *string       `json:"poster_url"`
	Trailer *string       `json:"trailer_url"`
	Details *MovieDetails `json:"details,omitempty"`
}

// RandomMovieResponse backs the surprise-me control.
type RandomMovieResponse struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Poster  *string `json:"poster_url"`
	Trailer *string `json:"trailer_url"`
}

type TrendingMovie struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Poster  *string `json:"poster_url"`
}

type TrendingResponse struct {
	Results []TrendingMovie `json:"results"`
}

type SearchResponse struct {
	Query   string  `json:"query"`
	Results []Movie `json:"results"`
}
