package yahooApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/config"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/externalApi"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/model"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/model/yahooModel"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// SupportedIntervals lists the granularities the chart endpoint accepts.
// Intraday ones may be restricted by Yahoo to recent date ranges.
var SupportedIntervals = []string{
	"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h",
	"1d", "5d", "1wk", "1mo", "3mo",
}

func IntervalSupported(interval string) bool {
	return slices.Contains(SupportedIntervals, interval)
}

type YahooApi struct {
	client    *resty.Client
	retries   int
	baseSleep time.Duration
}

func New(cfg *config.Config) *YahooApi {
	retries := cfg.Fetch.Retries
	if retries < 1 {
		retries = 1
	}

	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", cfg.API.YahooApi.UserAgent)
	return &YahooApi{
		client:    client,
		retries:   retries,
		baseSleep: cfg.Fetch.BaseSleep,
	}
}

// GetHistory fetches the historical series for one symbol over [start, end).
// Failed requests are retried with exponential backoff: baseSleep * 2^(attempt-1).
// The last error is returned once the attempts are exhausted.
func (a *YahooApi) GetHistory(ctx context.Context, symbol string, start, end time.Time, interval string, autoAdjust bool) (model.History, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.GetHistory"

	slog.Debug("GetHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("interval", interval))

	var lastErr error
	for attempt := 1; attempt <= a.retries; attempt++ {
		history, err := a.getChart(ctx, symbol, start, end, interval, autoAdjust)
		if err == nil {
			slog.Debug("GetHistory completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.Int("rows", len(history.Candles)))
			return history, nil
		}

		lastErr = err
		if errors.Is(err, externalApi.ErrNotFound) || errors.Is(err, context.Canceled) {
			break
		}

		slog.Warn(
			"GetHistory attempt failed",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("symbol", symbol),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)

		if attempt < a.retries {
			delay := a.baseSleep * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return model.History{}, ctx.Err()
			}
		}
	}

	slog.Error("GetHistory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", lastErr.Error()))
	return model.History{}, lastErr
}

func (a *YahooApi) getChart(ctx context.Context, symbol string, start, end time.Time, interval string, autoAdjust bool) (model.History, error) {
	params := map[string]string{
		"period1":              strconv.FormatInt(start.Unix(), 10),
		"period2":              strconv.FormatInt(end.Unix(), 10),
		"interval":             interval,
		"includeAdjustedClose": "true",
		"events":               "history",
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return model.History{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.History{}, externalApi.ErrNotFound
	}

	chartResp := yahooModel.ChartResponse{}
	if err := json.Unmarshal(resp.Body(), &chartResp); err != nil {
		if resp.IsError() {
			return model.History{}, fmt.Errorf("yahoo chart request failed with status %d", resp.StatusCode())
		}
		return model.History{}, fmt.Errorf("can't unmarshal response into yahooModel.ChartResponse: %w", err)
	}

	if chartResp.Chart.Error != nil {
		if chartResp.Chart.Error.Code == "Not Found" {
			return model.History{}, externalApi.ErrNotFound
		}
		return model.History{}, fmt.Errorf("yahoo chart error %s: %s", chartResp.Chart.Error.Code, chartResp.Chart.Error.Description)
	}

	if resp.IsError() {
		return model.History{}, fmt.Errorf("yahoo chart request failed with status %d", resp.StatusCode())
	}

	if len(chartResp.Chart.Result) == 0 {
		return model.History{}, errors.New("yahoo chart response has no result")
	}

	return a.parseChartResult(chartResp.Chart.Result[0], symbol, interval, autoAdjust)
}

func (a *YahooApi) parseChartResult(result yahooModel.ChartResult, symbol, interval string, autoAdjust bool) (model.History, error) {
	history := model.History{
		Symbol:   symbol,
		Currency: result.Meta.Currency,
		Interval: interval,
	}

	// Empty series is a valid answer, the caller decides what to do with it.
	if len(result.Timestamp) == 0 {
		return history, nil
	}

	if len(result.Indicators.Quote) == 0 {
		return model.History{}, errors.New("yahoo chart response has no quote indicators")
	}

	// All five quote arrays must be parallel to the timestamps, a ragged
	// response must fail as an error, not a panic.
	n := len(result.Timestamp)
	quote := result.Indicators.Quote[0]
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n || len(quote.Volume) != n {
		return model.History{}, fmt.Errorf("quote arrays do not match timestamp length %d", n)
	}

	var adjclose []*float64
	if len(result.Indicators.Adjclose) > 0 {
		adjclose = result.Indicators.Adjclose[0].Adjclose
	}

	history.Candles = make([]model.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Yahoo emits null rows for halted or missing periods, skip them.
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}

		candle := model.Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Open:  decimal.NewFromFloat(*quote.Open[i]),
			High:  decimal.NewFromFloat(*quote.High[i]),
			Low:   decimal.NewFromFloat(*quote.Low[i]),
			Close: decimal.NewFromFloat(*quote.Close[i]),
		}
		if quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}

		candle.AdjClose = candle.Close
		if i < len(adjclose) && adjclose[i] != nil {
			candle.AdjClose = decimal.NewFromFloat(*adjclose[i])
		}

		if autoAdjust && !candle.Close.IsZero() {
			ratio := candle.AdjClose.Div(candle.Close)
			candle.Open = candle.Open.Mul(ratio)
			candle.High = candle.High.Mul(ratio)
			candle.Low = candle.Low.Mul(ratio)
			candle.Close = candle.AdjClose
		}

		history.Candles = append(history.Candles, candle)
	}

	return history, nil
}
