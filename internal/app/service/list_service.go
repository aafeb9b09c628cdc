package service

import (
	"context"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"catalog-metadata-service/internal/domain"
	"catalog-metadata-service/pkg/batch"
)

// listCatalog assembles a page of a curated list. The list provider
// cannot filter server-side, so the scan restarts from the first list
// page and accumulates matching items until the requested window is
// covered or the list runs out. Matching items are then enriched into
// full meta records; items the resolver cannot place are dropped.
func (s *CatalogService) listCatalog(ctx context.Context, req domain.CatalogRequest) (*domain.Catalog, error) {
	directive := domain.ResolveSortDirective(req.Genre)
	genre := req.Genre
	if directive != nil {
		genre = ""
	}

	need := req.Page * domain.DownstreamPageSize
	var selected []domain.ListItem
	for p := 1; len(selected) < need; p++ {
		items, err := s.lists.ListItems(ctx, req.ListID(), req.Language, p)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if listItemMatches(item, req.Type, genre) {
				selected = append(selected, item)
			}
		}
		if len(items) < domain.DownstreamPageSize {
			break
		}
	}

	start := (req.Page - 1) * domain.DownstreamPageSize
	if start >= len(selected) {
		return &domain.Catalog{Metas: []domain.MetaRecord{}}, nil
	}
	end := start + domain.DownstreamPageSize
	if end > len(selected) {
		end = len(selected)
	}
	window := selected[start:end]

	metas := batch.MapFiltered(ctx, window, func(ctx context.Context, item domain.ListItem) (*domain.MetaRecord, error) {
		return s.resolver.Resolve(ctx, req.Type, req.Language, item.ID)
	}, s.opts.Enrich)

	if directive != nil && directive.Shuffle {
		shuffleMetas(metas)
	}

	s.logger.Debug("list catalog assembled",
		zap.String("list_id", req.ListID()),
		zap.Int("selected", len(selected)),
		zap.Int("resolved", len(metas)),
	)

	return &domain.Catalog{Metas: metas}, nil
}

func shuffleMetas(metas []domain.MetaRecord) {
	rand.Shuffle(len(metas), func(i, j int) {
		metas[i], metas[j] = metas[j], metas[i]
	})
}

// listItemMatches applies the type and genre filters to one list item.
// List genres are free-form provider strings, so matching is
// case-insensitive.
func listItemMatches(item domain.ListItem, typ domain.ContentType, genre string) bool {
	itemType, ok := domain.CanonicalType(item.MediaType)
	if !ok || itemType != typ {
		return false
	}
	if genre == "" {
		return true
	}
	for _, g := range item.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}
