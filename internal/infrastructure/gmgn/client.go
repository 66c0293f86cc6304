package gmgn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/smartmoney/wallet-tracker/internal/config"
	"github.com/smartmoney/wallet-tracker/internal/domain/entities"
)

// trendingWalletsPath is the rank endpoint; the timeframe is appended as the
// final path segment.
const trendingWalletsPath = "/defi/quotation/v1/rank/sol/wallets"

// Client talks to the gmgn analytics API
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient creates a new gmgn API client
func NewClient(cfg config.ScraperConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// trendingWalletsResponse mirrors the payload shape of the rank endpoint
type trendingWalletsResponse struct {
	Rank []entities.RawWallet `json:"rank"`
}

// GetTrendingWallets fetches the trending-wallet ranking for a timeframe and
// wallet tag. Transient failures (network errors, 5xx) are retried with a
// fixed delay up to the configured limit.
func (c *Client) GetTrendingWallets(ctx context.Context, timeframe, walletTag string) ([]entities.RawWallet, error) {
	endpoint := fmt.Sprintf("%s%s/%s?tag=%s",
		c.baseURL, trendingWalletsPath, url.PathEscape(timeframe), url.QueryEscape(walletTag))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying trending wallets request",
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		wallets, retryable, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return wallets, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch trending wallets: %w", lastErr)
}

// fetchOnce performs a single request. The second return value reports whether
// the failure is worth retrying.
func (c *Client) fetchOnce(ctx context.Context, endpoint string) ([]entities.RawWallet, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload trendingWalletsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}

	return payload.Rank, false, nil
}
