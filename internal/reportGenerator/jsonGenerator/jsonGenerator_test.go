package jsonGenerator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHistory(symbol string) model.History {
	return model.History{
		Symbol:   symbol,
		Interval: "1d",
		Candles: []model.Candle{
			{
				Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Open:     decimal.NewFromFloat(42000.5),
				High:     decimal.NewFromInt(43000),
				Low:      decimal.NewFromInt(41500),
				Close:    decimal.NewFromInt(42800),
				AdjClose: decimal.NewFromInt(42800),
				Volume:   1000,
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	data, err := New().Generate(context.Background(), testHistory("BTC-USD"))
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)

	assert.Equal(t, "2024-01-01", records[0]["date"])
	assert.Equal(t, 42000.5, records[0]["open"])
	assert.Equal(t, float64(42800), records[0]["close"])
	assert.Equal(t, float64(1000), records[0]["volume"])

	// Per-symbol output carries no symbol field.
	_, hasSymbol := records[0]["symbol"]
	assert.False(t, hasSymbol)
}

func TestGenerate_NumbersAreUnquoted(t *testing.T) {
	t.Parallel()

	data, err := New().Generate(context.Background(), testHistory("BTC-USD"))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"open": 42000.5`)
	assert.NotContains(t, string(data), `"open": "42000.5"`)
}

func TestGenerateMerged(t *testing.T) {
	t.Parallel()

	histories := []model.History{testHistory("BTC-USD"), testHistory("ETH-USD")}

	data, err := New().GenerateMerged(context.Background(), histories)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "BTC-USD", records[0]["symbol"])
	assert.Equal(t, "ETH-USD", records[1]["symbol"])
}

func TestGenerateMerged_Empty(t *testing.T) {
	t.Parallel()

	data, err := New().GenerateMerged(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "[]", string(data))
}
