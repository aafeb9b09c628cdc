package tmdb

import (
	"context"
	"errors"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-metadata-service/internal/domain"
)

type stubGenreSource struct {
	table domain.GenreTable
	err   error
}

func (s *stubGenreSource) GenreTable(context.Context, domain.ContentType, string) (domain.GenreTable, error) {
	return s.table, s.err
}

// TestResolver_Resolve tests that a found item keeps its external id.
func TestResolver_Resolve(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/find/tt1375666",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"movie_results": []map[string]any{
				{"id": 27205, "title": "Inception", "genre_ids": []int{878}},
			},
		}))

	client := newTestClient()
	resolver := NewResolver(client, &stubGenreSource{
		table: domain.GenreTable{{ID: 878, Name: "Science Fiction"}},
	}, zap.NewNop())

	meta, err := resolver.Resolve(context.Background(), domain.ContentTypeMovie, "en-US", "tt1375666")

	require.NoError(t, err)
	assert.Equal(t, "tt1375666", meta.ID)
	assert.Equal(t, "Inception", meta.Name)
	assert.Equal(t, []string{"Science Fiction"}, meta.Genres)
}

// TestResolver_GenreTableFallback tests that an unavailable genre table
// does not fail the lookup.
func TestResolver_GenreTableFallback(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/find/tt1375666",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"movie_results": []map[string]any{
				{"id": 27205, "title": "Inception", "genre_ids": []int{878}},
			},
		}))

	client := newTestClient()
	resolver := NewResolver(client, &stubGenreSource{err: errors.New("cache down")}, zap.NewNop())

	meta, err := resolver.Resolve(context.Background(), domain.ContentTypeMovie, "en-US", "tt1375666")

	require.NoError(t, err)
	assert.Equal(t, []string{"Science Fiction"}, meta.Genres)
}

// TestResolver_NotFound tests upstream miss propagation.
func TestResolver_NotFound(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/find/tt0000000",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"movie_results": []map[string]any{},
			"tv_results":    []map[string]any{},
		}))

	client := newTestClient()
	resolver := NewResolver(client, &stubGenreSource{}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), domain.ContentTypeMovie, "en-US", "tt0000000")

	assert.Error(t, err)
}
