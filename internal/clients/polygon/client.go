// Package polygon fetches previous-close and snapshot prices from Polygon.io.
package polygon

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/clientdata"
	"github.com/aristath/earnings/internal/clients/httpclient"
	"github.com/aristath/earnings/internal/modules/market"
)

// DefaultBaseURL is the Polygon REST endpoint.
const DefaultBaseURL = "https://api.polygon.io"

// Client for the Polygon API. Responses are cached in client_data.db.
type Client struct {
	http      *httpclient.Client
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a Polygon client. cacheRepo is optional; nil disables
// caching. The free tier allows 5 calls per minute.
func NewClient(apiKey, baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{httpclient.WithRateLimit(5.0/60.0, 5)}, opts...)
	return &Client{
		http:      httpclient.New("polygon", baseURL, "apiKey", apiKey, log, opts...),
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "polygon").Logger(),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.http.Configured()
}

// PrevClose returns a quote carrying only the previous session's close.
func (c *Client) PrevClose(ctx context.Context, symbol string) (market.Quote, error) {
	symbol = strings.ToUpper(symbol)
	return clientdata.Fetch(ctx, c.cacheRepo, clientdata.TablePolygonPrevClose, symbol, clientdata.TTLPrevClose, c.log,
		func(ctx context.Context) (market.Quote, error) {
			var resp prevCloseResponse
			path := fmt.Sprintf("/v2/aggs/ticker/%s/prev", symbol)
			if err := c.http.Get(ctx, path, nil, &resp); err != nil {
				return market.Quote{}, err
			}
			if len(resp.Results) == 0 {
				return market.Quote{}, fmt.Errorf("polygon: no previous close for %s", symbol)
			}
			return transformPrevClose(symbol, resp), nil
		})
}

// Snapshot returns the latest trade price and previous close for symbol.
func (c *Client) Snapshot(ctx context.Context, symbol string) (market.Quote, error) {
	symbol = strings.ToUpper(symbol)
	return clientdata.Fetch(ctx, c.cacheRepo, clientdata.TablePolygonSnapshot, symbol, clientdata.TTLSnapshot, c.log,
		func(ctx context.Context) (market.Quote, error) {
			var resp snapshotResponse
			path := "/v2/snapshot/locale/us/markets/stocks/tickers/" + symbol
			if err := c.http.Get(ctx, path, nil, &resp); err != nil {
				return market.Quote{}, err
			}
			return transformSnapshot(symbol, resp), nil
		})
}

// Quote returns the snapshot, falling back to the previous close when the
// snapshot is unavailable (it requires a paid plan) or has no prices.
func (c *Client) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	q, err := c.Snapshot(ctx, symbol)
	if err == nil && q.CurrentPrice != nil && q.PreviousClose != nil {
		return q, nil
	}
	if err != nil {
		c.log.Debug().Err(err).Str("symbol", symbol).Msg("Snapshot unavailable, using previous close")
	}

	prev, prevErr := c.PrevClose(ctx, symbol)
	if prevErr != nil {
		if err == nil {
			return q, nil
		}
		return market.Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", symbol, prevErr)
	}
	if err == nil {
		if q.PreviousClose == nil {
			q.PreviousClose = prev.PreviousClose
		}
		return q, nil
	}
	return prev, nil
}
