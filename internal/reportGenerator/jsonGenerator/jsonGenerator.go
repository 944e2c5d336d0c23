package jsonGenerator

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/model"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/utils"
)

// Record is one exported row. Decimal values go through json.Number so they
// are emitted as plain JSON numbers. Symbol is only set in merged output.
type Record struct {
	Date     string      `json:"date"`
	Open     json.Number `json:"open"`
	High     json.Number `json:"high"`
	Low      json.Number `json:"low"`
	Close    json.Number `json:"close"`
	AdjClose json.Number `json:"adjClose"`
	Volume   int64       `json:"volume"`
	Symbol   string      `json:"symbol,omitempty"`
}

type JSONGenerator struct{}

func New() *JSONGenerator {
	return &JSONGenerator{}
}

// Generate renders one symbol's history as an indented JSON list of row
// objects with ISO-8601 date strings.
func (g *JSONGenerator) Generate(ctx context.Context, history model.History) ([]byte, error) {
	return g.marshal(ctx, records(history, false))
}

// GenerateMerged renders all fetched histories as one JSON list, each row
// tagged with its symbol.
func (g *JSONGenerator) GenerateMerged(ctx context.Context, histories []model.History) ([]byte, error) {
	merged := make([]Record, 0)
	for _, history := range histories {
		merged = append(merged, records(history, true)...)
	}
	return g.marshal(ctx, merged)
}

func (g *JSONGenerator) marshal(ctx context.Context, recs []Record) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "JSONGenerator.marshal"

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		slog.Error("got error marshalling records", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}
	return data, nil
}

func records(history model.History, withSymbol bool) []Record {
	recs := make([]Record, 0, len(history.Candles))
	for _, candle := range history.Candles {
		rec := Record{
			Date:     history.DateString(candle),
			Open:     json.Number(candle.Open.String()),
			High:     json.Number(candle.High.String()),
			Low:      json.Number(candle.Low.String()),
			Close:    json.Number(candle.Close.String()),
			AdjClose: json.Number(candle.AdjClose.String()),
			Volume:   candle.Volume,
		}
		if withSymbol {
			rec.Symbol = history.Symbol
		}
		recs = append(recs, rec)
	}
	return recs
}
