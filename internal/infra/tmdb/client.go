// Package tmdb implements the upstream metadata provider client.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"catalog-metadata-service/internal/domain"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// DefaultTimeout is the fixed per-request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	CB      CBConfig
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// Client implements domain.MetadataProvider against the TMDB API.
// Retries are owned by the caller (pkg/retry); the resty client carries
// only the timeout, so this layer surfaces every failure exactly once.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	apiKey string
	logger *zap.Logger
}

// New creates a new TMDB client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "catalog-metadata-service")

	return &Client{
		client: client,
		cb:     newCircuitBreaker("tmdb", cfg.CB),
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

func newCircuitBreaker(name string, cfg CBConfig) *gobreaker.CircuitBreaker[*resty.Response] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.FailureRatio <= 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.FailureRatio
		},
	}

	return gobreaker.NewCircuitBreaker[*resty.Response](settings)
}

// get performs one authenticated GET, decoding the body into result and
// mapping failures onto the domain error taxonomy: 401 is a
// configuration error (never retryable), everything else non-2xx is a
// transient *StatusError carrying the server's message.
func (c *Client) get(ctx context.Context, path string, query map[string]string, result any) error {
	if c.apiKey == "" {
		return domain.ErrMissingAPIKey
	}

	_, err := c.cb.Execute(func() (*resty.Response, error) {
		var errBody apiError
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParam("api_key", c.apiKey).
			SetQueryParams(query).
			SetResult(result).
			SetError(&errBody).
			Get(path)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			if r.StatusCode() == http.StatusUnauthorized {
				return nil, fmt.Errorf("%w (%s)", domain.ErrInvalidAPIKey, errBody.StatusMessage)
			}

			return nil, &domain.StatusError{
				Status:  r.StatusCode(),
				Message: errBody.StatusMessage,
			}
		}

		return r, nil
	})
	if err != nil {
		c.logger.Debug("tmdb request failed",
			zap.String("path", path),
			zap.String("breaker", c.cb.State().String()),
			zap.Error(err),
		)

		return fmt.Errorf("fetching %s: %w", path, err)
	}

	return nil
}

// Discover fetches one discover page for the given type.
func (c *Client) Discover(ctx context.Context, typ domain.ContentType, params domain.DiscoverParams) (*domain.UpstreamPage, error) {
	var page domain.UpstreamPage
	path := "/discover/" + typ.MediaType()
	if err := c.get(ctx, path, discoverQuery(params), &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// discoverQuery flattens DiscoverParams into query parameters, omitting
// zero values.
func discoverQuery(p domain.DiscoverParams) map[string]string {
	query := map[string]string{}
	if p.Language != "" {
		query["language"] = p.Language
	}
	if p.Page > 0 {
		query["page"] = strconv.Itoa(p.Page)
	}
	if p.SortBy != "" {
		query["sort_by"] = p.SortBy
	}
	if p.WithGenres != "" {
		query["with_genres"] = p.WithGenres
	}
	if p.PrimaryReleaseYear > 0 {
		query["primary_release_year"] = strconv.Itoa(p.PrimaryReleaseYear)
	}
	if p.FirstAirDateYear > 0 {
		query["first_air_date_year"] = strconv.Itoa(p.FirstAirDateYear)
	}
	if p.WithOriginalLanguage != "" {
		query["with_original_language"] = p.WithOriginalLanguage
	}
	if p.WithWatchProviders != "" {
		query["with_watch_providers"] = p.WithWatchProviders
	}
	if p.WatchRegion != "" {
		query["watch_region"] = p.WatchRegion
	}
	if p.WithMonetizationType != "" {
		query["with_watch_monetization_types"] = p.WithMonetizationType
	}
	if p.CertCountry != "" {
		query["certification_country"] = p.CertCountry
	}
	if p.Certification != "" {
		query["certification"] = p.Certification
	}
	if p.VoteCountGTE > 0 {
		query["vote_count.gte"] = strconv.Itoa(p.VoteCountGTE)
	}
	return query
}

// Trending fetches one page of the daily trending feed.
func (c *Client) Trending(ctx context.Context, typ domain.ContentType, language string, page int) (*domain.UpstreamPage, error) {
	var result domain.UpstreamPage
	path := fmt.Sprintf("/trending/%s/day", typ.MediaType())
	query := map[string]string{
		"language": language,
		"page":     strconv.Itoa(page),
	}
	if err := c.get(ctx, path, query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GenreList fetches the genre table for (language, type).
func (c *Client) GenreList(ctx context.Context, language string, typ domain.ContentType) (domain.GenreTable, error) {
	var result genreListResponse
	path := fmt.Sprintf("/genre/%s/list", typ.MediaType())
	if err := c.get(ctx, path, map[string]string{"language": language}, &result); err != nil {
		return nil, err
	}

	return domain.GenreTable(result.Genres), nil
}

// Languages fetches the upstream language catalog: the set of primary
// translation tags, each resolved to its English display name.
func (c *Client) Languages(ctx context.Context) ([]domain.Language, error) {
	var translations []string
	if err := c.get(ctx, "/configuration/primary_translations", nil, &translations); err != nil {
		return nil, err
	}

	var catalog []apiLanguage
	if err := c.get(ctx, "/configuration/languages", nil, &catalog); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(catalog))
	for _, l := range catalog {
		name := l.EnglishName
		if name == "" {
			name = l.Name
		}
		names[l.ISO639] = name
	}

	languages := make([]domain.Language, 0, len(translations))
	for _, tag := range translations {
		code, _, _ := strings.Cut(tag, "-")
		name, ok := names[code]
		if !ok {
			name = code
		}
		languages = append(languages, domain.Language{ISO639: tag, Name: name})
	}

	return languages, nil
}

// Favorites fetches one page of the session's favorite movies or shows.
func (c *Client) Favorites(ctx context.Context, typ domain.ContentType, language, session, sortBy string, page int) (*domain.UpstreamPage, error) {
	return c.accountList(ctx, "favorite", typ, language, session, sortBy, page)
}

// Watchlist fetches one page of the session's watchlist.
func (c *Client) Watchlist(ctx context.Context, typ domain.ContentType, language, session, sortBy string, page int) (*domain.UpstreamPage, error) {
	return c.accountList(ctx, "watchlist", typ, language, session, sortBy, page)
}

func (c *Client) accountList(ctx context.Context, kind string, typ domain.ContentType, language, session, sortBy string, page int) (*domain.UpstreamPage, error) {
	if session == "" {
		return nil, domain.ErrMissingSession
	}

	segment := "movies"
	if typ == domain.ContentTypeSeries {
		segment = "tv"
	}

	query := map[string]string{
		"language":   language,
		"session_id": session,
		"page":       strconv.Itoa(page),
	}
	if sortBy != "" {
		query["sort_by"] = sortBy
	}

	var result domain.UpstreamPage
	path := fmt.Sprintf("/account/account_id/%s/%s", kind, segment)
	if err := c.get(ctx, path, query, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// FindByIMDB resolves an IMDB id to the matching raw item, if any.
func (c *Client) FindByIMDB(ctx context.Context, typ domain.ContentType, language, imdbID string) (*domain.RawItem, error) {
	var result findResponse
	path := "/find/" + imdbID
	query := map[string]string{
		"external_source": "imdb_id",
		"language":        language,
	}
	if err := c.get(ctx, path, query, &result); err != nil {
		return nil, err
	}

	results := result.MovieResults
	if typ == domain.ContentTypeSeries {
		results = result.TVResults
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no %s found for %s", typ, imdbID)
	}

	return &results[0], nil
}

