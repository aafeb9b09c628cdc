// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"fmt"
	"strings"
)

// ContentType represents the type of catalog content.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

// CanonicalType normalizes upstream spellings ("tv") to a ContentType.
// Unknown values return false.
func CanonicalType(s string) (ContentType, bool) {
	switch strings.ToLower(s) {
	case "movie":
		return ContentTypeMovie, true
	case "series", "tv", "show":
		return ContentTypeSeries, true
	}
	return "", false
}

// MediaType returns the upstream API's spelling of the content type.
func (t ContentType) MediaType() string {
	if t == ContentTypeSeries {
		return "tv"
	}
	return "movie"
}

// Pagination constants. The upstream provider serves fixed pages of 20
// items while the downstream catalog contract is fixed pages of 100, so
// one downstream page spans five upstream pages.
const (
	DownstreamPageSize = 100
	UpstreamPageSize   = 20

	// PagesPerDownstreamPage = ceil(DownstreamPageSize / UpstreamPageSize)
	PagesPerDownstreamPage = (DownstreamPageSize + UpstreamPageSize - 1) / UpstreamPageSize

	// MaxUpstreamPagesPerRequest caps how deep a single request may walk
	// the upstream when client-side filtering keeps starving the window.
	MaxUpstreamPagesPerRequest = 10
)

// PageWindow returns the inclusive upstream page range [start, end] that
// backs downstream page p (1-indexed).
func PageWindow(p int) (start, end int) {
	if p < 1 {
		p = 1
	}
	start = (p-1)*PagesPerDownstreamPage + 1
	end = start + PagesPerDownstreamPage - 1
	return start, end
}

// CatalogRequest identifies one incoming catalog request. It is
// constructed at the entry point and never mutated afterwards.
type CatalogRequest struct {
	Type     ContentType
	Language string // locale tag, e.g. "en-US"
	Page     int    // downstream page, 1-indexed
	SourceID string // e.g. "tmdb.top", "tmdb.trending", "mdblist.1234"
	Genre    string // optional; may also carry a sort directive
	Session  string // optional account session for personal catalogs
}

// CacheKey returns the fingerprint used to cache this request's result.
func (r CatalogRequest) CacheKey() string {
	return fmt.Sprintf("catalog|%s|%s|%s|%d|%s", r.SourceID, r.Type, r.Language, r.Page, r.Genre)
}

// Cacheable reports whether the result may be shared across callers.
// Session-scoped catalogs are per-account and never cached.
func (r CatalogRequest) Cacheable() bool {
	return r.Session == ""
}

// IsListSource reports whether the request targets an externally
// enumerated list provider rather than the metadata provider.
func (r CatalogRequest) IsListSource() bool {
	return strings.HasPrefix(r.SourceID, "mdblist.")
}

// ListID extracts the list identifier from a list source id.
func (r CatalogRequest) ListID() string {
	_, id, _ := strings.Cut(r.SourceID, ".")
	return id
}

// Catalog is the downstream page: at most DownstreamPageSize records in
// upstream fetch order. Immutable once returned.
type Catalog struct {
	Metas []MetaRecord `json:"metas"`
}

// MetaRecord is the normalized display record derived from one raw
// upstream item plus a genre table.
type MetaRecord struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Genres      []string    `json:"genres"`
	Poster      string      `json:"poster,omitempty"`
	Background  string      `json:"background,omitempty"`
	PosterShape string      `json:"posterShape"`
	IMDBRating  string      `json:"imdbRating"`
	Year        string      `json:"year"`
	Type        ContentType `json:"type"`
	Description string      `json:"description"`
}
