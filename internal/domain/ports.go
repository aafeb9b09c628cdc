package domain

import (
	"context"
	"time"
)

// DiscoverParams are the query parameters for a discover-style upstream
// request. Zero values are omitted from the query.
type DiscoverParams struct {
	Language             string
	Page                 int
	SortBy               string
	WithGenres           string
	PrimaryReleaseYear   int
	FirstAirDateYear     int
	WithOriginalLanguage string
	WithWatchProviders   string
	WatchRegion          string
	WithMonetizationType string
	CertCountry          string
	Certification        string
	VoteCountGTE         int
}

// MetadataProvider is the upstream catalog metadata source.
// Implementations: internal/infra/tmdb.
//
// Each call may fail with ErrInvalidAPIKey / ErrMissingAPIKey (not
// retryable) or a *StatusError (transient, retryable per status).
type MetadataProvider interface {
	// Discover fetches one discover page for the given type.
	Discover(ctx context.Context, typ ContentType, params DiscoverParams) (*UpstreamPage, error)

	// Trending fetches one page of the daily trending feed. Trending
	// pages are unfiltered; genre filtering happens client-side.
	Trending(ctx context.Context, typ ContentType, language string, page int) (*UpstreamPage, error)

	// GenreList fetches the genre table for (language, type).
	GenreList(ctx context.Context, language string, typ ContentType) (GenreTable, error)

	// Languages fetches the upstream language catalog.
	Languages(ctx context.Context) ([]Language, error)

	// Favorites fetches one page of the session's favorites.
	Favorites(ctx context.Context, typ ContentType, language, session, sortBy string, page int) (*UpstreamPage, error)

	// Watchlist fetches one page of the session's watchlist.
	Watchlist(ctx context.Context, typ ContentType, language, session, sortBy string, page int) (*UpstreamPage, error)
}

// ListItem is a raw record from an externally enumerated list provider.
type ListItem struct {
	ID        string   `json:"id"` // external id, resolvable by a MetaResolver
	Title     string   `json:"title"`
	MediaType string   `json:"mediatype"` // "movie" or "show"
	Genres    []string `json:"genre"`
}

// ListProvider enumerates user-curated lists.
// Implementations: internal/infra/mdblist.
type ListProvider interface {
	// ListItems fetches one page of a list. The provider's page size
	// equals the downstream page size. A missing or exhausted list
	// yields an empty slice.
	ListItems(ctx context.Context, listID, language string, page int) ([]ListItem, error)
}

// MetaResolver enriches a single external id into a full MetaRecord.
type MetaResolver interface {
	Resolve(ctx context.Context, typ ContentType, language, id string) (*MetaRecord, error)
}

// Cache defines the interface for cache backend drivers.
// Implementations: internal/infra/cache.
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
