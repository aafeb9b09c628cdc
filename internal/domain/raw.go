package domain

// RawItem is an unenriched record as returned by an upstream list
// endpoint. It lives only inside one aggregation pass.
type RawItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
}

// DisplayName returns the item's title, favoring the movie field.
func (r RawItem) DisplayName() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// HasGenre reports whether the item carries the given upstream genre id.
func (r RawItem) HasGenre(genreID int) bool {
	for _, id := range r.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// UpstreamPage is the result of one upstream page fetch. TotalPages is 0
// until the upstream reports it; callers treat 0 as unknown/unbounded.
type UpstreamPage struct {
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Results      []RawItem `json:"results"`
}

// FilterByGenreID returns the items carrying the given genre id,
// preserving order. A page where nothing matches yields an empty slice.
func FilterByGenreID(items []RawItem, genreID int) []RawItem {
	filtered := make([]RawItem, 0, len(items))
	for _, item := range items {
		if item.HasGenre(genreID) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
