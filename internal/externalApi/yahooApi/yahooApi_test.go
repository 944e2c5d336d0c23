package yahooApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/config"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/externalApi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartPayload = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "BTC-USD", "currency": "USD"},
			"timestamp": [1704067200, 1704153600, 1704240000],
			"indicators": {
				"quote": [{
					"open":   [42000.5, null, 44250.0],
					"high":   [43000.0, null, 45100.0],
					"low":    [41500.0, null, 44000.0],
					"close":  [42800.0, null, 45000.0],
					"volume": [1000, null, 1200]
				}],
				"adjclose": [{"adjclose": [42800.0, null, 45000.0]}]
			}
		}],
		"error": null
	}
}`

func testConfig(url string, retries int) *config.Config {
	return &config.Config{
		API: config.API{
			Timeout: 5 * time.Second,
			YahooApi: config.YahooApi{
				Url:       url,
				UserAgent: "test-agent",
			},
		},
		Fetch: config.Fetch{
			Retries:   retries,
			BaseSleep: time.Millisecond,
		},
	}
}

func TestGetHistory_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BTC-USD", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartPayload))
	}))
	defer server.Close()

	api := New(testConfig(server.URL, 3))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	history, err := api.GetHistory(context.Background(), "BTC-USD", start, end, "1d", false)

	require.NoError(t, err)
	assert.Equal(t, "BTC-USD", history.Symbol)
	assert.Equal(t, "USD", history.Currency)

	// The null row is skipped, not zero-filled.
	require.Len(t, history.Candles, 2)
	assert.Equal(t, "42000.5", history.Candles[0].Open.String())
	assert.Equal(t, "42800", history.Candles[0].Close.String())
	assert.Equal(t, int64(1000), history.Candles[0].Volume)
	assert.Equal(t, "2024-01-01", history.Candles[0].Date.Format(time.DateOnly))
	assert.Equal(t, "45000", history.Candles[1].Close.String())
}

func TestGetHistory_AutoAdjustScalesPrices(t *testing.T) {
	t.Parallel()

	payload := `{
		"chart": {
			"result": [{
				"meta": {"symbol": "AAPL", "currency": "USD"},
				"timestamp": [1704067200],
				"indicators": {
					"quote": [{
						"open": [100.0], "high": [110.0], "low": [90.0], "close": [100.0], "volume": [500]
					}],
					"adjclose": [{"adjclose": [50.0]}]
				}
			}],
			"error": null
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	api := New(testConfig(server.URL, 1))

	history, err := api.GetHistory(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now(), "1d", true)

	require.NoError(t, err)
	require.Len(t, history.Candles, 1)
	assert.Equal(t, "50", history.Candles[0].Open.String())
	assert.Equal(t, "55", history.Candles[0].High.String())
	assert.Equal(t, "45", history.Candles[0].Low.String())
	assert.Equal(t, "50", history.Candles[0].Close.String())
}

func TestGetHistory_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(chartPayload))
	}))
	defer server.Close()

	api := New(testConfig(server.URL, 3))

	history, err := api.GetHistory(context.Background(), "BTC-USD", time.Now().AddDate(0, -1, 0), time.Now(), "1d", false)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, history.Candles, 2)
}

func TestGetHistory_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	api := New(testConfig(server.URL, 2))

	_, err := api.GetHistory(context.Background(), "BTC-USD", time.Now().AddDate(0, -1, 0), time.Now(), "1d", false)

	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetHistory_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	api := New(testConfig(server.URL, 3))

	_, err := api.GetHistory(context.Background(), "NOPE-USD", time.Now().AddDate(0, -1, 0), time.Now(), "1d", false)

	require.ErrorIs(t, err, externalApi.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetHistory_EmptySeriesIsNotAnError(t *testing.T) {
	t.Parallel()

	payload := `{
		"chart": {
			"result": [{
				"meta": {"symbol": "BTC-USD", "currency": "USD"},
				"timestamp": [],
				"indicators": {"quote": [{}]}
			}],
			"error": null
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	api := New(testConfig(server.URL, 1))

	history, err := api.GetHistory(context.Background(), "BTC-USD", time.Now().AddDate(0, -1, 0), time.Now(), "1d", false)

	require.NoError(t, err)
	assert.True(t, history.Empty())
}

func TestGetHistory_RaggedQuoteArraysAreAnError(t *testing.T) {
	t.Parallel()

	// Two timestamps but only one open value, the row loop must not run.
	payload := `{
		"chart": {
			"result": [{
				"meta": {"symbol": "BTC-USD", "currency": "USD"},
				"timestamp": [1704067200, 1704153600],
				"indicators": {
					"quote": [{
						"open":   [42000.5],
						"high":   [43000.0, 45100.0],
						"low":    [41500.0, 44000.0],
						"close":  [42800.0, 45000.0],
						"volume": [1000, 1200]
					}]
				}
			}],
			"error": null
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	api := New(testConfig(server.URL, 1))

	_, err := api.GetHistory(context.Background(), "BTC-USD", time.Now().AddDate(0, -1, 0), time.Now(), "1d", false)

	require.Error(t, err)
	assert.ErrorContains(t, err, "quote arrays do not match timestamp length")
}

func TestIntervalSupported(t *testing.T) {
	t.Parallel()

	assert.True(t, IntervalSupported("1d"))
	assert.True(t, IntervalSupported("1wk"))
	assert.False(t, IntervalSupported("2wk"))
	assert.False(t, IntervalSupported(""))
}
