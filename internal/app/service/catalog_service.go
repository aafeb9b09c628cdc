package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalog-metadata-service/internal/domain"
	"catalog-metadata-service/internal/infra/cache"
	"catalog-metadata-service/pkg/batch"
	"catalog-metadata-service/pkg/retry"
)

// DefaultCatalogTTL is how long assembled catalog pages stay cached.
// Source feeds reorder daily, so pages go stale within a day.
const DefaultCatalogTTL = 24 * time.Hour

// Source ids served from the upstream metadata provider. List sources
// (mdblist.<id>) are open-ended and recognized by prefix instead.
const (
	SourceTop       = "tmdb.top"
	SourceTrending  = "tmdb.trending"
	SourceYear      = "tmdb.year"
	SourceLanguage  = "tmdb.language"
	SourceFavorites = "tmdb.favorites"
	SourceWatchlist = "tmdb.watchlist"

	streamingPrefix = "streaming."
)

// watchProviders maps streaming catalog slugs to the upstream watch
// provider ids used by the discover endpoint.
var watchProviders = map[string]string{
	"netflix":        "8",
	"amazon-prime":   "9",
	"disney-plus":    "337",
	"hbo-max":        "1899",
	"hulu":           "15",
	"apple-tv-plus":  "350",
	"paramount-plus": "531",
	"peacock":        "386",
	"crunchyroll":    "283",
}

// certifications maps a configured rating ceiling to the cumulative US
// certification set the discover endpoint filters on. TV content rates
// on its own scale. NC-17 is absent on purpose: it admits everything,
// so no filter is sent.
var certifications = map[string]struct{ movie, series string }{
	"G":     {"G", "TV-G"},
	"PG":    {"G|PG", "TV-G|TV-PG"},
	"PG-13": {"G|PG|PG-13", "TV-G|TV-PG|TV-14"},
	"R":     {"G|PG|PG-13|R", "TV-G|TV-PG|TV-14|TV-MA"},
}

// Options tunes catalog assembly. Zero values fall back to defaults.
type Options struct {
	// CatalogTTL bounds how long an assembled page is cached.
	CatalogTTL time.Duration

	// AgeRating, when set (G, PG, PG-13, R), constrains discover
	// results to certifications at or below it.
	AgeRating string

	// WatchRegion is the default region for streaming catalogs when
	// the request language carries no region tag.
	WatchRegion string

	// Lists are the configured curated list ids, advertised alongside
	// the built-in sources.
	Lists []string

	// Retry applies to every upstream call made while assembling.
	Retry retry.Config

	// Enrich bounds the concurrent meta lookups for list catalogs.
	Enrich batch.Options
}

// CatalogService assembles catalog pages: it remaps downstream pages
// onto upstream page windows, aggregates and filters the results, and
// normalizes them into meta records.
type CatalogService struct {
	provider domain.MetadataProvider
	lists    domain.ListProvider
	resolver domain.MetaResolver
	genres   *GenreService
	cache    *cache.Store
	opts     Options
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	provider domain.MetadataProvider,
	lists domain.ListProvider,
	resolver domain.MetaResolver,
	genres *GenreService,
	store *cache.Store,
	opts Options,
	logger *zap.Logger,
) *CatalogService {
	if opts.CatalogTTL <= 0 {
		opts.CatalogTTL = DefaultCatalogTTL
	}
	if opts.WatchRegion == "" {
		opts.WatchRegion = "US"
	}
	opts.Retry.Logger = logger
	opts.Enrich.Logger = logger
	return &CatalogService{
		provider: provider,
		lists:    lists,
		resolver: resolver,
		genres:   genres,
		cache:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Sources returns every catalog source id this instance serves.
func (s *CatalogService) Sources() []string {
	sources := []string{
		SourceTop, SourceTrending, SourceYear, SourceLanguage,
		SourceFavorites, SourceWatchlist,
	}
	for slug := range watchProviders {
		sources = append(sources, streamingPrefix+slug)
	}
	for _, id := range s.opts.Lists {
		sources = append(sources, "mdblist."+id)
	}
	return sources
}

// Get assembles the catalog page for the request. Shared (sessionless)
// results are cached under the request fingerprint; session-scoped
// catalogs always go to the upstream.
func (s *CatalogService) Get(ctx context.Context, req domain.CatalogRequest) (*domain.Catalog, error) {
	if req.Page < 1 {
		req.Page = 1
	}

	s.logger.Debug("assembling catalog",
		zap.String("source", req.SourceID),
		zap.String("type", string(req.Type)),
		zap.String("language", req.Language),
		zap.Int("page", req.Page),
		zap.String("genre", req.Genre),
	)

	if !req.Cacheable() {
		return s.assemble(ctx, req)
	}
	return cache.Wrap(ctx, s.cache, req.CacheKey(), s.opts.CatalogTTL, func() (*domain.Catalog, error) {
		return s.assemble(ctx, req)
	})
}

func (s *CatalogService) assemble(ctx context.Context, req domain.CatalogRequest) (*domain.Catalog, error) {
	if req.IsListSource() {
		return s.listCatalog(ctx, req)
	}

	table, _ := s.genres.GenreTable(ctx, req.Type, req.Language)

	// A configured genre name wins over a sort token spelled the same
	// way; only an unmatched value is tried as a sort directive.
	genreID, isGenre := table.IDOf(req.Genre)
	var directive *domain.SortDirective
	if !isGenre {
		directive = domain.ResolveSortDirective(req.Genre)
	}

	var (
		items []domain.RawItem
		err   error
	)
	switch {
	case req.SourceID == SourceTrending:
		items, err = s.fetchTrending(ctx, req, genreID, isGenre)
	case req.SourceID == SourceFavorites || req.SourceID == SourceWatchlist:
		items, err = s.fetchAccountList(ctx, req, directive)
		if err == nil && isGenre {
			items = domain.FilterByGenreID(items, genreID)
		}
	case req.SourceID == SourceTop || req.SourceID == SourceYear ||
		req.SourceID == SourceLanguage || strings.HasPrefix(req.SourceID, streamingPrefix):
		items, err = s.fetchDiscover(ctx, req, genreID, isGenre, directive)
	default:
		return nil, domain.ErrUnknownSource
	}
	if err != nil {
		return nil, err
	}

	// The account endpoints only honor created_at ordering, so
	// favorites and watchlist results are re-sorted here for the other
	// fields. Shuffle is always local.
	if directive != nil {
		if directive.Shuffle || req.SourceID == SourceFavorites || req.SourceID == SourceWatchlist {
			domain.SortItems(items, *directive)
		}
	}

	if len(items) > domain.DownstreamPageSize {
		items = items[:domain.DownstreamPageSize]
	}
	metas := make([]domain.MetaRecord, 0, len(items))
	for _, raw := range items {
		metas = append(metas, domain.ParseMeta(raw, req.Type, table))
	}
	return &domain.Catalog{Metas: metas}, nil
}

// fetchDiscover walks the upstream window behind the requested page,
// carrying server-side filters so every returned item already matches.
func (s *CatalogService) fetchDiscover(ctx context.Context, req domain.CatalogRequest, genreID int, isGenre bool, directive *domain.SortDirective) ([]domain.RawItem, error) {
	params := domain.DiscoverParams{
		Language:     req.Language,
		SortBy:       "popularity.desc",
		VoteCountGTE: 10,
	}
	if directive != nil && directive.APIParam() != "" {
		params.SortBy = directive.APIParam()
	}
	if isGenre {
		params.WithGenres = strconv.Itoa(genreID)
	}
	if cert, ok := certifications[s.opts.AgeRating]; ok {
		params.CertCountry = "US"
		params.Certification = cert.movie
		if req.Type == domain.ContentTypeSeries {
			params.Certification = cert.series
		}
	}

	switch {
	case req.SourceID == SourceTop:
		if req.Type == domain.ContentTypeSeries {
			params.WatchRegion = s.watchRegion(req.Language)
			params.WithMonetizationType = "flatrate|free|ads|rent|buy"
		}
	case req.SourceID == SourceYear:
		// An empty genre slot means no year was picked yet; the client
		// still expects a page, so default to the current year.
		params.WithGenres = ""
		year := time.Now().Year()
		if req.Genre != "" {
			y, err := strconv.Atoi(req.Genre)
			if err != nil {
				return nil, domain.ErrUnknownSource
			}
			year = y
		}
		if req.Type == domain.ContentTypeSeries {
			params.FirstAirDateYear = year
		} else {
			params.PrimaryReleaseYear = year
		}
	case req.SourceID == SourceLanguage:
		// No picked language defaults to the request locale's primary
		// tag.
		params.WithGenres = ""
		code, _, _ := strings.Cut(req.Language, "-")
		if req.Genre != "" {
			c, ok := domain.LanguageCode(req.Genre, s.genres.Languages(ctx))
			if !ok {
				return nil, domain.ErrUnknownSource
			}
			code = c
		}
		params.WithOriginalLanguage = code
	case strings.HasPrefix(req.SourceID, streamingPrefix):
		provider, ok := watchProviders[strings.TrimPrefix(req.SourceID, streamingPrefix)]
		if !ok {
			return nil, domain.ErrUnknownSource
		}
		params.WithWatchProviders = provider
		params.WatchRegion = s.watchRegion(req.Language)
		params.WithMonetizationType = "flatrate|free|ads"
	}

	start, end := domain.PageWindow(req.Page)
	totalPages := math.MaxInt
	var items []domain.RawItem
	for p := start; p <= end && p <= totalPages && len(items) < domain.DownstreamPageSize; p++ {
		params.Page = p
		page, err := retry.Do(ctx, func() (*domain.UpstreamPage, error) {
			return s.provider.Discover(ctx, req.Type, params)
		}, s.retryConfig("discover"))
		if err != nil {
			return nil, err
		}
		if page.TotalPages > 0 {
			totalPages = page.TotalPages
		}
		if len(page.Results) == 0 {
			break
		}
		items = append(items, page.Results...)
	}
	return items, nil
}

// fetchTrending walks the trending feed from the window start. The feed
// cannot filter server-side, so matching happens here and the walk may
// overrun the window, bounded by the per-request page cap.
func (s *CatalogService) fetchTrending(ctx context.Context, req domain.CatalogRequest, genreID int, isGenre bool) ([]domain.RawItem, error) {
	start, _ := domain.PageWindow(req.Page)
	totalPages := math.MaxInt
	var items []domain.RawItem
	for p := start; p <= totalPages &&
		p-start < domain.MaxUpstreamPagesPerRequest &&
		len(items) < domain.DownstreamPageSize; p++ {
		page, err := retry.Do(ctx, func() (*domain.UpstreamPage, error) {
			return s.provider.Trending(ctx, req.Type, req.Language, p)
		}, s.retryConfig("trending"))
		if err != nil {
			return nil, err
		}
		if page.TotalPages > 0 {
			totalPages = page.TotalPages
		}
		if len(page.Results) == 0 {
			break
		}
		results := page.Results
		if isGenre {
			results = domain.FilterByGenreID(results, genreID)
		}
		items = append(items, results...)
	}
	return items, nil
}

// fetchAccountList walks the session's favorites or watchlist window.
// The directive's sort parameter is passed along, but the account
// endpoints only order by created_at, so the caller re-sorts the
// aggregated window for the other fields.
func (s *CatalogService) fetchAccountList(ctx context.Context, req domain.CatalogRequest, directive *domain.SortDirective) ([]domain.RawItem, error) {
	if req.Session == "" {
		return nil, domain.ErrMissingSession
	}

	fetch := s.provider.Favorites
	if req.SourceID == SourceWatchlist {
		fetch = s.provider.Watchlist
	}
	sortBy := "created_at.desc"
	if directive != nil && directive.APIParam() != "" {
		sortBy = directive.APIParam()
	}

	start, end := domain.PageWindow(req.Page)
	totalPages := math.MaxInt
	var items []domain.RawItem
	for p := start; p <= end && p <= totalPages && len(items) < domain.DownstreamPageSize; p++ {
		page, err := retry.Do(ctx, func() (*domain.UpstreamPage, error) {
			return fetch(ctx, req.Type, req.Language, req.Session, sortBy, p)
		}, s.retryConfig(req.SourceID))
		if err != nil {
			return nil, err
		}
		if page.TotalPages > 0 {
			totalPages = page.TotalPages
		}
		if len(page.Results) == 0 {
			break
		}
		items = append(items, page.Results...)
	}
	return items, nil
}

func (s *CatalogService) retryConfig(operation string) retry.Config {
	cfg := s.opts.Retry
	cfg.Operation = operation
	return cfg
}

func (s *CatalogService) watchRegion(language string) string {
	if _, region, ok := strings.Cut(language, "-"); ok && len(region) == 2 {
		return strings.ToUpper(region)
	}
	return s.opts.WatchRegion
}
