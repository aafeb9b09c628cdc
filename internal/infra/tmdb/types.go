package tmdb

import "catalog-metadata-service/internal/domain"

// apiError is the upstream's error envelope.
type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// genreListResponse wraps a genre table fetch.
type genreListResponse struct {
	Genres []domain.Genre `json:"genres"`
}

// apiLanguage is one entry of /configuration/languages.
type apiLanguage struct {
	ISO639      string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// findResponse wraps an external-id lookup.
type findResponse struct {
	MovieResults []domain.RawItem `json:"movie_results"`
	TVResults    []domain.RawItem `json:"tv_results"`
}
