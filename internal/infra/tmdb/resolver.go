package tmdb

import (
	"context"

	"go.uber.org/zap"

	"catalog-metadata-service/internal/domain"
)

// GenreSource provides localized genre tables for meta parsing. It is
// implemented by the genre service so resolved items share the cached tables.
type GenreSource interface {
	GenreTable(ctx context.Context, typ domain.ContentType, language string) (domain.GenreTable, error)
}

// Resolver turns external IMDB ids into full catalog meta records.
type Resolver struct {
	client *Client
	genres GenreSource
	logger *zap.Logger
}

// NewResolver creates a resolver backed by the upstream find endpoint.
func NewResolver(client *Client, genres GenreSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		client: client,
		genres: genres,
		logger: logger,
	}
}

// Resolve looks up the item by IMDB id and parses it into a meta record.
// A missing genre table degrades to the built-in fallback table instead of
// failing the whole lookup.
func (r *Resolver) Resolve(ctx context.Context, typ domain.ContentType, language, imdbID string) (*domain.MetaRecord, error) {
	raw, err := r.client.FindByIMDB(ctx, typ, language, imdbID)
	if err != nil {
		return nil, err
	}

	table, err := r.genres.GenreTable(ctx, typ, language)
	if err != nil {
		r.logger.Warn("genre table unavailable, using fallback",
			zap.String("language", language),
			zap.Error(err))
		table = FallbackGenres(typ)
	}

	meta := domain.ParseMeta(*raw, typ, table)
	meta.ID = imdbID

	return &meta, nil
}
