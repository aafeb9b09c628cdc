package dto

import (
	"catalog-metadata-service/internal/domain"
)

// MetaResponse is one catalog entry as the downstream client expects it.
type MetaResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Genres      []string `json:"genres"`
	Poster      string   `json:"poster,omitempty"`
	Background  string   `json:"background,omitempty"`
	PosterShape string   `json:"posterShape"`
	IMDBRating  string   `json:"imdbRating"`
	Year        string   `json:"year"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
}

// CatalogResponse is the catalog page envelope.
type CatalogResponse struct {
	Metas []MetaResponse `json:"metas"`
}

// FromCatalog converts a domain catalog to its response shape.
func FromCatalog(c *domain.Catalog) CatalogResponse {
	metas := make([]MetaResponse, len(c.Metas))
	for i, m := range c.Metas {
		metas[i] = MetaResponse{
			ID:          m.ID,
			Name:        m.Name,
			Genres:      m.Genres,
			Poster:      m.Poster,
			Background:  m.Background,
			PosterShape: m.PosterShape,
			IMDBRating:  m.IMDBRating,
			Year:        m.Year,
			Type:        string(m.Type),
			Description: m.Description,
		}
	}
	return CatalogResponse{Metas: metas}
}

// SourcesResponse lists the catalog source ids this instance serves.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

// CleanupResponse reports one expired-entry sweep.
type CleanupResponse struct {
	Removed int64 `json:"removed"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
