// Package finnhub fetches the earnings calendar, company profiles and
// quotes from Finnhub.
package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/clientdata"
	"github.com/aristath/earnings/internal/clients/httpclient"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/internal/modules/market"
)

// DefaultBaseURL is the Finnhub REST endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Client for the Finnhub API. Responses are cached in client_data.db.
type Client struct {
	http      *httpclient.Client
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a Finnhub client. cacheRepo is optional; nil disables
// caching. The free tier allows 60 calls per minute.
func NewClient(apiKey, baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{httpclient.WithRateLimit(1, 5)}, opts...)
	return &Client{
		http:      httpclient.New("finnhub", baseURL, "token", apiKey, log, opts...),
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "finnhub").Logger(),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.http.Configured()
}

// EarningsCalendar returns calendar rows reporting between from and to
// (YYYY-MM-DD, inclusive).
func (c *Client) EarningsCalendar(ctx context.Context, from, to string) ([]earnings.Report, error) {
	key := from + ":" + to
	return clientdata.Fetch(ctx, c.cacheRepo, clientdata.TableFinnhubCalendar, key, clientdata.TTLCalendar, c.log,
		func(ctx context.Context) ([]earnings.Report, error) {
			var resp calendarResponse
			params := url.Values{"from": {from}, "to": {to}}
			if err := c.http.Get(ctx, "/calendar/earnings", params, &resp); err != nil {
				return nil, err
			}
			reports := transformCalendar(resp)
			c.log.Info().
				Str("from", from).
				Str("to", to).
				Int("count", len(reports)).
				Msg("Fetched earnings calendar")
			return reports, nil
		})
}

// Profile returns market capitalization and shares outstanding for symbol,
// in base units.
func (c *Client) Profile(ctx context.Context, symbol string) (Profile, error) {
	symbol = strings.ToUpper(symbol)
	return clientdata.Fetch(ctx, c.cacheRepo, clientdata.TableFinnhubProfile, symbol, clientdata.TTLProfile, c.log,
		func(ctx context.Context) (Profile, error) {
			var resp profileResponse
			if err := c.http.Get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &resp); err != nil {
				return Profile{}, err
			}
			if resp.Ticker == "" {
				return Profile{}, fmt.Errorf("finnhub: no profile for %s", symbol)
			}
			return transformProfile(resp), nil
		})
}

// Quote returns the current price and previous close for symbol. Quotes are
// not cached.
func (c *Client) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	symbol = strings.ToUpper(symbol)
	var resp quoteResponse
	if err := c.http.Get(ctx, "/quote", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return market.Quote{}, err
	}
	return transformQuote(symbol, resp), nil
}
