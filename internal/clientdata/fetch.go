package clientdata

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/metrics"
)

// Fetch returns the cached value for key when fresh. Otherwise it calls
// fetch and caches the result for ttl. If fetch fails and a stale entry
// exists, the stale value is returned instead of the error.
// A nil repo disables caching.
func Fetch[T any](
	ctx context.Context,
	repo *Repository,
	table, key string,
	ttl time.Duration,
	log zerolog.Logger,
	fetch func(context.Context) (T, error),
) (T, error) {
	var zero T

	if repo != nil {
		data, err := repo.GetIfFresh(ctx, table, key)
		if err != nil {
			log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Cache read failed")
		} else if data != nil {
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				log.Debug().Str("table", table).Str("key", key).Msg("Cache hit")
				return cached, nil
			}
		}
	}

	value, fetchErr := fetch(ctx)
	if fetchErr == nil {
		if repo != nil {
			if err := repo.Store(ctx, table, key, value, ttl); err != nil {
				log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Failed to cache response")
			}
		}
		return value, nil
	}

	if repo != nil {
		if data, err := repo.Get(ctx, table, key); err == nil && data != nil {
			var stale T
			if err := json.Unmarshal(data, &stale); err == nil {
				metrics.RecordCacheFallback(table)
				log.Warn().
					Err(fetchErr).
					Str("table", table).
					Str("key", key).
					Msg("API failed, using stale cached data")
				return stale, nil
			}
		}
	}

	return zero, fmt.Errorf("fetch %s/%s: %w", table, key, fetchErr)
}
