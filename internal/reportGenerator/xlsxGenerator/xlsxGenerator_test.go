package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testHistory(symbol string) model.History {
	return model.History{
		Symbol:   symbol,
		Interval: "1d",
		Candles: []model.Candle{
			{
				Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Open:     decimal.NewFromInt(100),
				High:     decimal.NewFromInt(110),
				Low:      decimal.NewFromInt(90),
				Close:    decimal.NewFromInt(105),
				AdjClose: decimal.NewFromInt(105),
				Volume:   500,
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	data, err := New().Generate(context.Background(), []model.History{testHistory("BTC-USD"), testHistory("ETH-USD")})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"BTC-USD", "ETH-USD"}, f.GetSheetList())

	date, err := f.GetCellValue("BTC-USD", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", date)

	header, err := f.GetCellValue("BTC-USD", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)
}

func TestGenerate_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := New().Generate(context.Background(), nil)
	assert.Error(t, err)
}
