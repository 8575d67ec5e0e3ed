package market

import "github.com/aristath/earnings/internal/domain"

// Market capitalization thresholds in USD. This is the only table in use;
// every caller classifies through ClassifyMarketCapSize.
const (
	MegaCapThreshold  = 200_000_000_000
	LargeCapThreshold = 10_000_000_000
	MidCapThreshold   = 2_000_000_000
)

// ClassifyMarketCapSize buckets a market cap, evaluated top-down. Missing,
// zero, negative and NaN caps classify as SMALL.
func ClassifyMarketCapSize(marketCap *float64) domain.SizeClass {
	if marketCap == nil || !(*marketCap > 0) {
		return domain.SizeSmall
	}

	switch mc := *marketCap; {
	case mc >= MegaCapThreshold:
		return domain.SizeMega
	case mc >= LargeCapThreshold:
		return domain.SizeLarge
	case mc >= MidCapThreshold:
		return domain.SizeMid
	default:
		return domain.SizeSmall
	}
}
