// Package benzinga fetches company guidance from the Benzinga calendar API.
package benzinga

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/clientdata"
	"github.com/aristath/earnings/internal/clients/httpclient"
	"github.com/aristath/earnings/internal/modules/earnings"
)

// DefaultBaseURL is the Benzinga REST endpoint.
const DefaultBaseURL = "https://api.benzinga.com/api/v2.1"

// Client for the Benzinga guidance calendar.
type Client struct {
	http      *httpclient.Client
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a Benzinga client. cacheRepo is optional; nil disables
// caching.
func NewClient(apiKey, baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]httpclient.Option{httpclient.WithRateLimit(2, 5)}, opts...)
	return &Client{
		http:      httpclient.New("benzinga", baseURL, "token", apiKey, log, opts...),
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "benzinga").Logger(),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.http.Configured()
}

// Guidance returns primary guidance announced between from and to
// (YYYY-MM-DD). An empty tickers list returns every company.
func (c *Client) Guidance(ctx context.Context, from, to string, tickers []string) ([]earnings.Guidance, error) {
	symbols := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			symbols = append(symbols, t)
		}
	}
	sort.Strings(symbols)
	joined := strings.Join(symbols, ",")

	key := from + ":" + to + ":" + joined
	return clientdata.Fetch(ctx, c.cacheRepo, clientdata.TableBenzingaGuidance, key, clientdata.TTLGuidance, c.log,
		func(ctx context.Context) ([]earnings.Guidance, error) {
			params := url.Values{
				"parameters[date_from]": {from},
				"parameters[date_to]":   {to},
				"pagesize":              {"1000"},
			}
			if joined != "" {
				params.Set("parameters[tickers]", joined)
			}

			var resp guidanceResponse
			if err := c.http.Get(ctx, "/calendar/guidance", params, &resp); err != nil {
				return nil, err
			}
			items := transformGuidance(resp)
			c.log.Info().
				Str("from", from).
				Str("to", to).
				Int("received", len(resp.Guidance)).
				Int("kept", len(items)).
				Msg("Fetched guidance")
			return items, nil
		})
}
