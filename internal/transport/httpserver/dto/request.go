// Package dto defines the HTTP request and response shapes.
package dto

import (
	"catalog-metadata-service/internal/domain"
)

// CatalogRequest carries the query parameters of a catalog page request.
// Type and source id come from the path and are bound by the handler.
type CatalogRequest struct {
	Language string `query:"language" validate:"omitempty,max=10"`
	Page     int    `query:"page" validate:"omitempty,min=1,max=1000"`
	Genre    string `query:"genre" validate:"omitempty,max=100"`
	Session  string `query:"session" validate:"omitempty,max=200"`
}

// ToCatalogRequest builds the domain request, applying defaults for the
// optional parameters.
func (r CatalogRequest) ToCatalogRequest(typ domain.ContentType, sourceID string) domain.CatalogRequest {
	language := r.Language
	if language == "" {
		language = "en-US"
	}
	page := r.Page
	if page < 1 {
		page = 1
	}
	return domain.CatalogRequest{
		Type:     typ,
		Language: language,
		Page:     page,
		SourceID: sourceID,
		Genre:    r.Genre,
		Session:  r.Session,
	}
}
