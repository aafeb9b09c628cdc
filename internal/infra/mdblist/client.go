// Package mdblist implements the curated list provider client.
package mdblist

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"catalog-metadata-service/internal/domain"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.mdblist.com"

// DefaultTimeout is the fixed per-request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client fetches curated list pages. List pages are sized to the downstream
// page size, so one list page maps to exactly one catalog page before
// filtering.
type Client struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger
}

// New creates a list provider client.
func New(cfg Config, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		client: client,
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

type listItemsResponse struct {
	Movies []domain.ListItem `json:"movies"`
	Shows  []domain.ListItem `json:"shows"`
}

// ListItems fetches one page of the given list, merging movies and shows in
// provider order. A failed or empty fetch yields an empty slice so a broken
// list degrades to an empty catalog instead of an error page.
func (c *Client) ListItems(ctx context.Context, listID, language string, page int) ([]domain.ListItem, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingListAPIKey
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * domain.DownstreamPageSize

	var result listItemsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":             c.apiKey,
			"language":           language,
			"limit":              strconv.Itoa(domain.DownstreamPageSize),
			"offset":             strconv.Itoa(offset),
			"append_to_response": "genre,poster",
		}).
		SetResult(&result).
		Get("/lists/" + listID + "/items")
	if err != nil {
		c.logger.Warn("list fetch failed",
			zap.String("list_id", listID),
			zap.Int("page", page),
			zap.Error(err))
		return []domain.ListItem{}, nil
	}
	if resp.IsError() {
		c.logger.Warn("list fetch rejected",
			zap.String("list_id", listID),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		if resp.StatusCode() == 403 {
			return nil, fmt.Errorf("%w: list %s", domain.ErrInvalidListAPIKey, listID)
		}
		return []domain.ListItem{}, nil
	}

	items := make([]domain.ListItem, 0, len(result.Movies)+len(result.Shows))
	items = append(items, result.Movies...)
	items = append(items, result.Shows...)

	return items, nil
}
