package csvGenerator

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"strconv"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/model"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/utils"
)

var header = []string{"Date", "Open", "High", "Low", "Close", "AdjClose", "Volume"}

type CSVGenerator struct{}

func New() *CSVGenerator {
	return &CSVGenerator{}
}

// Generate renders one symbol's history as CSV bytes with a header row and
// ISO-8601 dates.
func (g *CSVGenerator) Generate(ctx context.Context, history model.History) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CSVGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", history.Symbol))

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, candle := range history.Candles {
		record := []string{
			history.DateString(candle),
			candle.Open.String(),
			candle.High.String(),
			candle.Low.String(),
			candle.Close.String(),
			candle.AdjClose.String(),
			strconv.FormatInt(candle.Volume, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		slog.Error("got error writing csv", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", history.Symbol))

	return buf.Bytes(), nil
}
