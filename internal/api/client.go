package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/perxlab/catalog-widget/pkg/config"
	pkgerrors "github.com/perxlab/catalog-widget/pkg/errors"
	"github.com/perxlab/catalog-widget/pkg/metrics"
	"github.com/perxlab/catalog-widget/pkg/types"
)

const (
	goodsPath   = "/api/goods/"
	dealersPath = "/api/dealers/"

	endpointGoods   = "goods"
	endpointDealers = "dealers"

	responseBodyReadLimit int64 = 4 << 20
)

// Client talks to the catalog backend and maps raw records into domain types.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	placeholder string
	fetchStats  *metrics.FetchMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMetrics attaches a fetch metrics recorder.
func WithMetrics(stats *metrics.FetchMetrics) Option {
	return func(c *Client) {
		c.fetchStats = stats
	}
}

// NewClient builds a catalog API client from configuration.
func NewClient(cfg config.APIConfig, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     base,
		placeholder: cfg.PlaceholderImage,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// FetchProducts loads the catalog, optionally scoped server-side to dealers.
// An empty dealer list means "all products".
func (c *Client) FetchProducts(ctx context.Context, dealerIDs []string) ([]types.Product, error) {
	endpoint := c.baseURL + goodsPath
	if len(dealerIDs) > 0 {
		query := url.Values{}
		query.Set("dealers", strings.Join(dealerIDs, ","))
		endpoint += "?" + query.Encode()
	}

	var raw []goodRecord
	if err := c.getJSON(ctx, endpointGoods, endpoint, &raw); err != nil {
		return nil, err
	}

	products := make([]types.Product, 0, len(raw))
	for _, record := range raw {
		products = append(products, record.toProduct(c.baseURL, c.placeholder))
	}
	return products, nil
}

// FetchDealers loads the authoritative dealer id list.
func (c *Client) FetchDealers(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.getJSON(ctx, endpointDealers, c.baseURL+dealersPath, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	started := time.Now()
	err := c.doGetJSON(ctx, rawURL, out)
	c.fetchStats.ObserveDuration(endpoint, time.Since(started))
	if err != nil {
		c.fetchStats.IncFailure(endpoint)
		return err
	}
	c.fetchStats.IncSuccess(endpoint)
	return nil
}

func (c *Client) doGetJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "catalog api unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return pkgerrors.New(pkgerrors.CodeNetwork,
			fmt.Sprintf("catalog api returned %s", resp.Status))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode response body")
	}
	return nil
}
