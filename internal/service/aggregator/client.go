package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"CapitolPulse/internal/domain/models"
	"CapitolPulse/internal/service/ratelimit"
	pkghttp "CapitolPulse/pkg/http"
	"CapitolPulse/pkg/logger"
)

const (
	pathLeaderboard = "/leaderboard"
	pathSectors     = "/stats/sectors"
	pathTrades      = "/trades"
)

// ClientOption configures Client.
type ClientOption func(*Client)

// Client talks to the trade aggregation API. It performs exactly one request
// per call and classifies every failure into a models.FetchError; retry and
// caching policy live with the caller.
type Client struct {
	baseURL      string
	httpClient   *pkghttp.Client
	limiter      *ratelimit.Limiter
	rateCapacity float64
	ratePerSec   float64
	logger       *logger.Logger
}

// NewClient creates an aggregation API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   pkghttp.NewClient(pkghttp.WithTimeout(10 * time.Second)),
		rateCapacity: 20,
		ratePerSec:   10,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *pkghttp.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit enables client-side rate limiting against the aggregator.
func WithRateLimit(l *ratelimit.Limiter, capacity, perSec float64) ClientOption {
	return func(c *Client) {
		c.limiter = l
		c.rateCapacity = capacity
		c.ratePerSec = perSec
	}
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// Leaderboard fetches aggregated per-official activity for the filter.
func (c *Client) Leaderboard(ctx context.Context, f models.FilterState) (*models.LeaderboardPayload, error) {
	var payload models.LeaderboardPayload
	if err := c.get(ctx, pathLeaderboard, f.Query(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Sectors fetches per-ticker aggregates. The sectors endpoint only filters by
// period; chamber and pagination parameters are not part of its contract.
func (c *Client) Sectors(ctx context.Context, f models.FilterState) (*models.SectorPayload, error) {
	q := map[string][]string{}
	if f.Period != "" {
		q["period"] = []string{string(f.Period)}
	}

	var payload models.SectorPayload
	if err := c.get(ctx, pathSectors, q, &payload); err != nil {
		return nil, err
	}
	return payload.Normalize(), nil
}

// Trades fetches the raw disclosed-trade feed for the filter.
func (c *Client) Trades(ctx context.Context, f models.FilterState) ([]models.Trade, error) {
	var trades []models.Trade
	if err := c.get(ctx, pathTrades, f.Query(), &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// get issues one GET and decodes a 2xx JSON body into dest. Failures come
// back as *models.FetchError so callers can branch on kind.
func (c *Client) get(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if c.limiter != nil && !c.limiter.Allow("aggregator", c.rateCapacity, c.ratePerSec) {
		return &models.FetchError{Kind: models.ErrKindNetwork, Err: fmt.Errorf("client rate limit exceeded")}
	}

	resp, err := c.httpClient.SendRequest(ctx, &pkghttp.RequestOptions{
		Method:      http.MethodGet,
		URL:         c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	})
	if err != nil {
		return &models.FetchError{Kind: models.ErrKindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if c.logger != nil {
			c.logger.Warn("aggregator returned non-2xx",
				logger.String("path", path),
				logger.Int("status", resp.StatusCode))
		}
		return &models.FetchError{Kind: models.ErrKindHTTP, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &models.FetchError{Kind: models.ErrKindDecode, Err: err}
	}
	return nil
}
