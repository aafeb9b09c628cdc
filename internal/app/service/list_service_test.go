package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-metadata-service/internal/domain"
)

// listOf fabricates count sequential list items of the given media type.
func listOf(start, count int, mediaType string, genres ...string) []domain.ListItem {
	items := make([]domain.ListItem, count)
	for i := range items {
		items[i] = domain.ListItem{
			ID:        fmt.Sprintf("tt%07d", start+i),
			Title:     fmt.Sprintf("Item %d", start+i),
			MediaType: mediaType,
			Genres:    genres,
		}
	}
	return items
}

func listRequest(page int) domain.CatalogRequest {
	return domain.CatalogRequest{
		Type:     domain.ContentTypeMovie,
		Language: "en-US",
		Page:     page,
		SourceID: "mdblist.my-list",
	}
}

// TestListCatalog_FirstPage tests routing, enrichment and the list id
// extraction.
func TestListCatalog_FirstPage(t *testing.T) {
	lists := &fakeLists{
		fn: func(_ string, page int) ([]domain.ListItem, error) {
			if page > 1 {
				return nil, nil
			}
			return listOf(1, 50, "movie", "Action"), nil
		},
	}
	resolver := &fakeResolver{}
	svc := newTestService(&fakeProvider{}, lists, resolver, Options{})

	catalog, err := svc.Get(context.Background(), listRequest(1))

	require.NoError(t, err)
	assert.Len(t, catalog.Metas, 50)
	assert.Equal(t, "tt0000001", catalog.Metas[0].ID)
	require.NotEmpty(t, lists.calls)
	assert.Equal(t, "my-list", lists.calls[0].listID)
}

// TestListCatalog_SecondPageRescan tests that deeper pages rescan the
// list from the start and slice the accumulated matches.
func TestListCatalog_SecondPageRescan(t *testing.T) {
	lists := &fakeLists{
		fn: func(_ string, page int) ([]domain.ListItem, error) {
			switch page {
			case 1, 2:
				return listOf((page-1)*100+1, 100, "movie"), nil
			case 3:
				return listOf(201, 50, "movie"), nil
			}
			return nil, nil
		},
	}
	resolver := &fakeResolver{}
	svc := newTestService(&fakeProvider{}, lists, resolver, Options{})

	catalog, err := svc.Get(context.Background(), listRequest(2))

	require.NoError(t, err)
	require.Len(t, catalog.Metas, domain.DownstreamPageSize)

	// The scan covers pages 1 and 2; the window serves items 101..200
	pages := make([]int, 0, len(lists.calls))
	for _, call := range lists.calls {
		pages = append(pages, call.page)
	}
	assert.Equal(t, []int{1, 2}, pages)
	assert.Equal(t, "tt0000101", catalog.Metas[0].ID)
	assert.Equal(t, "tt0000200", catalog.Metas[99].ID)
}

// TestListCatalog_TypeFilter tests that items of the other media type
// are skipped.
func TestListCatalog_TypeFilter(t *testing.T) {
	lists := &fakeLists{
		fn: func(_ string, page int) ([]domain.ListItem, error) {
			if page > 1 {
				return nil, nil
			}
			items := listOf(1, 10, "movie")
			items = append(items, listOf(11, 10, "show")...)
			return items, nil
		},
	}
	resolver := &fakeResolver{}
	svc := newTestService(&fakeProvider{}, lists, resolver, Options{})

	req := listRequest(1)
	req.Type = domain.ContentTypeSeries
	catalog, err := svc.Get(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, catalog.Metas, 10)
	assert.Equal(t, "tt0000011", catalog.Metas[0].ID)
}

// TestListCatalog_GenreFilter tests case-insensitive genre matching on
// the provider's free-form genre strings.
func TestListCatalog_GenreFilter(t *testing.T) {
	lists := &fakeLists{
		fn: func(_ string, page int) ([]domain.ListItem, error) {
			if page > 1 {
				return nil, nil
			}
			items := listOf(1, 5, "movie", "action", "thriller")
			items = append(items, listOf(6, 5, "movie", "comedy")...)
			return items, nil
		},
	}
	resolver := &fakeResolver{}
	svc := newTestService(&fakeProvider{}, lists, resolver, Options{})

	req := listRequest(1)
	req.Genre = "Action"
	catalog, err := svc.Get(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, catalog.Metas, 5)
}

// TestListCatalog_ResolverFailuresDropped tests that items the resolver
// cannot place disappear instead of failing the page.
func TestListCatalog_ResolverFailuresDropped(t *testing.T) {
	lists := &fakeLists{
		fn: func(_ string, page int) ([]domain.ListItem, error) {
			if page > 1 {
				return nil, nil
			}
			return listOf(1, 10, "movie"), nil
		},
	}
	resolver := &fakeResolver{
		fn: func(id string) (*domain.MetaRecord, error) {
			if id == "tt0000003" || id == "tt0000007" {
				return nil, errors.New("not found")
			}
			return &domain.MetaRecord{ID: id}, nil
		},
	}
	svc := newTestService(&fakeProvider{}, lists, resolver, Options{})

	catalog, err := svc.Get(context.Background(), listRequest(1))

	require.NoError(t, err)
	assert.Len(t, catalog.Metas, 8)
	for _, meta := range catalog.Metas {
		assert.NotEqual(t, "tt0000003", meta.ID)
		assert.NotEqual(t, "tt0000007", meta.ID)
	}
}

// TestListCatalog_PageBeyondEnd tests that a page past the filtered list
// yields an empty catalog.
func TestListCatalog_PageBeyondEnd(t *testing.T) {
	lists := &fakeLists{
		fn: func(_ string, page int) ([]domain.ListItem, error) {
			if page > 1 {
				return nil, nil
			}
			return listOf(1, 50, "movie"), nil
		},
	}
	svc := newTestService(&fakeProvider{}, lists, &fakeResolver{}, Options{})

	catalog, err := svc.Get(context.Background(), listRequest(3))

	require.NoError(t, err)
	assert.NotNil(t, catalog.Metas)
	assert.Empty(t, catalog.Metas)
}

// TestListCatalog_SortTokenSuppressesGenre tests that a genre slot
// holding a sort directive stops acting as a genre filter.
func TestListCatalog_SortTokenSuppressesGenre(t *testing.T) {
	lists := &fakeLists{
		fn: func(_ string, page int) ([]domain.ListItem, error) {
			if page > 1 {
				return nil, nil
			}
			return listOf(1, 20, "movie", "Drama"), nil
		},
	}
	resolver := &fakeResolver{}
	svc := newTestService(&fakeProvider{}, lists, resolver, Options{})

	req := listRequest(1)
	req.Genre = "Random"
	catalog, err := svc.Get(context.Background(), req)

	require.NoError(t, err)
	// No item carries a "Random" genre, yet nothing is filtered out
	require.Len(t, catalog.Metas, 20)

	seen := make(map[string]bool, len(catalog.Metas))
	for _, meta := range catalog.Metas {
		seen[meta.ID] = true
	}
	assert.Len(t, seen, 20)
}

// TestListCatalog_ProviderErrorPropagates tests that a list credential
// failure reaches the caller.
func TestListCatalog_ProviderErrorPropagates(t *testing.T) {
	lists := &fakeLists{
		fn: func(string, int) ([]domain.ListItem, error) {
			return nil, domain.ErrMissingListAPIKey
		},
	}
	svc := newTestService(&fakeProvider{}, lists, &fakeResolver{}, Options{})

	_, err := svc.Get(context.Background(), listRequest(1))

	assert.ErrorIs(t, err, domain.ErrMissingListAPIKey)
}
