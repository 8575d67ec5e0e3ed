package polygon

import (
	"strings"
	"time"

	"github.com/aristath/earnings/internal/modules/market"
	"github.com/aristath/earnings/pkg/numeric"
)

type prevCloseResponse struct {
	Ticker       string         `json:"ticker"`
	Status       string         `json:"status"`
	ResultsCount int            `json:"resultsCount"`
	Results      []aggregateBar `json:"results"`
}

type aggregateBar struct {
	Close     interface{} `json:"c"`
	Timestamp interface{} `json:"t"` // unix millis
}

type snapshotResponse struct {
	Status string         `json:"status"`
	Ticker snapshotTicker `json:"ticker"`
}

type snapshotTicker struct {
	Ticker    string      `json:"ticker"`
	Day       snapshotBar `json:"day"`
	PrevDay   snapshotBar `json:"prevDay"`
	LastTrade struct {
		Price interface{} `json:"p"`
	} `json:"lastTrade"`
	Updated interface{} `json:"updated"` // unix nanos
}

type snapshotBar struct {
	Close interface{} `json:"c"`
}

func transformPrevClose(symbol string, resp prevCloseResponse) market.Quote {
	q := market.Quote{
		UpdatedAt: time.Now().UTC(),
		Symbol:    strings.ToUpper(symbol),
	}
	if len(resp.Results) == 0 {
		return q
	}
	bar := resp.Results[0]
	q.PreviousClose = positive(numeric.NormalizeToBaseUnits(bar.Close))
	if ms := numeric.ToInt64(bar.Timestamp); ms != nil && *ms > 0 {
		q.UpdatedAt = time.UnixMilli(*ms).UTC()
	}
	return q
}

// transformSnapshot prefers the last trade over the day bar, which is empty
// before the open.
func transformSnapshot(symbol string, resp snapshotResponse) market.Quote {
	t := resp.Ticker
	q := market.Quote{
		UpdatedAt:     time.Now().UTC(),
		Symbol:        strings.ToUpper(symbol),
		CurrentPrice:  positive(numeric.NormalizeToBaseUnits(t.LastTrade.Price)),
		PreviousClose: positive(numeric.NormalizeToBaseUnits(t.PrevDay.Close)),
	}
	if q.CurrentPrice == nil {
		q.CurrentPrice = positive(numeric.NormalizeToBaseUnits(t.Day.Close))
	}
	if ns := numeric.ToInt64(t.Updated); ns != nil && *ns > 0 {
		q.UpdatedAt = time.Unix(0, *ns).UTC()
	}
	return q
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
