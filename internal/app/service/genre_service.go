// Package service provides application use cases.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"catalog-metadata-service/internal/domain"
	"catalog-metadata-service/internal/infra/cache"
	"catalog-metadata-service/internal/infra/tmdb"
	"catalog-metadata-service/pkg/retry"
)

// DefaultGenreTTL is how long genre and language tables stay cached.
// The tables change on the order of months upstream.
const DefaultGenreTTL = 7 * 24 * time.Hour

// GenreService serves localized genre tables and the language catalog.
// Lookups never fail: when both cache and the live endpoint are
// unavailable the built-in English tables are served instead.
type GenreService struct {
	provider domain.MetadataProvider
	cache    *cache.Store
	ttl      time.Duration
	logger   *zap.Logger
}

// NewGenreService creates a new GenreService.
func NewGenreService(provider domain.MetadataProvider, store *cache.Store, ttl time.Duration, logger *zap.Logger) *GenreService {
	if ttl <= 0 {
		ttl = DefaultGenreTTL
	}
	return &GenreService{
		provider: provider,
		cache:    store,
		ttl:      ttl,
		logger:   logger,
	}
}

// GenreTable returns the genre table for (type, language). The error
// return exists to satisfy callers that distinguish a live table from
// the fallback; it is always nil.
func (s *GenreService) GenreTable(ctx context.Context, typ domain.ContentType, language string) (domain.GenreTable, error) {
	key := fmt.Sprintf("genres|%s|%s", typ, language)
	table, err := cache.Wrap(ctx, s.cache, key, s.ttl, func() (domain.GenreTable, error) {
		return retry.Do(ctx, func() (domain.GenreTable, error) {
			return s.provider.GenreList(ctx, language, typ)
		}, retry.Config{Operation: "genre list", Logger: s.logger})
	})
	if err != nil {
		s.logger.Warn("genre list fetch failed, serving fallback table",
			zap.String("type", string(typ)),
			zap.String("language", language),
			zap.Error(err))
		return tmdb.FallbackGenres(typ), nil
	}
	return table, nil
}

// Languages returns the upstream language catalog, or the built-in list
// when the live endpoint is unavailable.
func (s *GenreService) Languages(ctx context.Context) []domain.Language {
	languages, err := cache.Wrap(ctx, s.cache, "languages", s.ttl, func() ([]domain.Language, error) {
		return retry.Do(ctx, func() ([]domain.Language, error) {
			return s.provider.Languages(ctx)
		}, retry.Config{Operation: "languages", Logger: s.logger})
	})
	if err != nil || len(languages) == 0 {
		s.logger.Warn("language catalog fetch failed, serving fallback list", zap.Error(err))
		return tmdb.FallbackLanguages()
	}
	return languages
}
