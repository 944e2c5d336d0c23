package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one row of historical price data for a symbol.
type Candle struct {
	Date     time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	AdjClose decimal.Decimal
	Volume   int64
}

// History is the full time series fetched for one symbol.
type History struct {
	Symbol   string
	Currency string
	Interval string
	Candles  []Candle
}

func (h History) Empty() bool {
	return len(h.Candles) == 0
}

// Intraday reports whether the interval is finer than one day,
// which controls the date format used by the exporters.
func (h History) Intraday() bool {
	switch h.Interval {
	case "1d", "5d", "1wk", "1mo", "3mo":
		return false
	}
	return true
}

// DateString renders a candle date for export: date-only for daily and
// coarser intervals, RFC3339 for intraday ones.
func (h History) DateString(c Candle) string {
	if h.Intraday() {
		return c.Date.UTC().Format(time.RFC3339)
	}
	return c.Date.UTC().Format(time.DateOnly)
}
