package historyService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/config"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/model"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/reportGenerator"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/service"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/utils"
	"golang.org/x/time/rate"
)

type TickerParser interface {
	ParseFile(ctx context.Context, path string, colHint string) ([]string, error)
}

type YahooApi interface {
	GetHistory(ctx context.Context, symbol string, start, end time.Time, interval string, autoAdjust bool) (model.History, error)
}

type CSVGenerator interface {
	Generate(ctx context.Context, history model.History) ([]byte, error)
}

type JSONGenerator interface {
	Generate(ctx context.Context, history model.History) ([]byte, error)
	GenerateMerged(ctx context.Context, histories []model.History) ([]byte, error)
}

type XLSXGenerator interface {
	Generate(ctx context.Context, histories []model.History) ([]byte, error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// RunParams describes one batch run.
type RunParams struct {
	Start       time.Time
	End         time.Time
	Interval    string
	AutoAdjust  bool
	WriteCSV    bool
	WriteJSON   bool
	WriteXLSX   bool
	WriteMerged bool
	Upload      bool
	Dirs        reportGenerator.Dirs
}

// RunSummary reports what happened to each symbol of the batch.
type RunSummary struct {
	Total      int
	Fetched    int
	Empty      int
	Failed     int
	MergedPath string
	XLSXPath   string
	UploadLink string
}

type HistoryService struct {
	cfg          *config.Config
	parser       TickerParser
	yahooApi     YahooApi
	csvGen       CSVGenerator
	jsonGen      JSONGenerator
	xlsxGen      XLSXGenerator
	cloudStorage CloudStorage
	limiter      *rate.Limiter
}

func New(
	cfg *config.Config,
	parser TickerParser,
	yahooApi YahooApi,
	csvGen CSVGenerator,
	jsonGen JSONGenerator,
	xlsxGen XLSXGenerator,
	cloudStorage CloudStorage,
) *HistoryService {
	// Polite pacing between requests, one request per BaseSleep.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Fetch.BaseSleep > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Fetch.BaseSleep), 1)
	}

	return &HistoryService{
		cfg:          cfg,
		parser:       parser,
		yahooApi:     yahooApi,
		csvGen:       csvGen,
		jsonGen:      jsonGen,
		xlsxGen:      xlsxGen,
		cloudStorage: cloudStorage,
		limiter:      limiter,
	}
}

// ParseTickers loads the symbol list from the tickers file. An empty result
// is not an error here, the caller decides.
func (s *HistoryService) ParseTickers(ctx context.Context, path string, colHint string) ([]string, error) {
	return s.parser.ParseFile(ctx, path, colHint)
}

// ValidateDates checks and resolves the run date range. Empty start falls
// back to the configured default, empty end means today.
func (s *HistoryService) ValidateDates(startStr, endStr string) (start, end time.Time, err error) {
	if startStr == "" {
		startStr = s.cfg.Fetch.DefaultStart
	}
	if endStr == "" {
		endStr = time.Now().UTC().Format(time.DateOnly)
	}

	start, err = time.Parse(time.DateOnly, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", service.ErrInvalidDate, startStr)
	}
	end, err = time.Parse(time.DateOnly, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", service.ErrInvalidDate, endStr)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s is after end %s", service.ErrInvalidDate, startStr, endStr)
	}
	return start, end, nil
}

// Run fetches the history for every ticker and writes the requested outputs.
// A failing symbol is logged and skipped, it never aborts the batch.
func (s *HistoryService) Run(ctx context.Context, params RunParams, tickers []string) (RunSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "HistoryService.Run"

	summary := RunSummary{Total: len(tickers)}
	if len(tickers) == 0 {
		return summary, service.ErrNoTickers
	}

	slog.Info(
		"run start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("tickers", len(tickers)),
		slog.String("start", params.Start.Format(time.DateOnly)),
		slog.String("end", params.End.Format(time.DateOnly)),
		slog.String("interval", params.Interval),
	)

	collect := params.WriteMerged || params.WriteXLSX
	var histories []model.History

	for i, symbol := range tickers {
		if err := s.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		slog.Info("fetching", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.Int("n", i+1), slog.Int("of", len(tickers)))

		history, err := s.yahooApi.GetHistory(ctx, symbol, params.Start, params.End, params.Interval, params.AutoAdjust)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			summary.Failed++
			slog.Error("fetch failed, continue with next symbol", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("err", err.Error()))
			continue
		}

		if history.Empty() {
			summary.Empty++
			slog.Info("no data for symbol", slog.String("rqID", rqID), slog.String("symbol", symbol))
			continue
		}

		if err := s.writeSymbolFiles(ctx, params, history); err != nil {
			summary.Failed++
			slog.Error("write failed, continue with next symbol", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("err", err.Error()))
			continue
		}

		summary.Fetched++
		if collect {
			histories = append(histories, history)
		}
	}

	if err := s.writeRunFiles(ctx, params, histories, &summary); err != nil {
		return summary, err
	}

	slog.Info(
		"run completed",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("fetched", summary.Fetched),
		slog.Int("empty", summary.Empty),
		slog.Int("failed", summary.Failed),
	)

	return summary, nil
}

func (s *HistoryService) writeSymbolFiles(ctx context.Context, params RunParams, history model.History) error {
	if params.WriteCSV {
		data, err := s.csvGen.Generate(ctx, history)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(params.Dirs.CSV, history.Symbol+".csv"), data, 0o644); err != nil {
			return err
		}
	}

	if params.WriteJSON {
		data, err := s.jsonGen.Generate(ctx, history)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(params.Dirs.JSON, history.Symbol+".json"), data, 0o644); err != nil {
			return err
		}
	}

	return nil
}

func (s *HistoryService) writeRunFiles(ctx context.Context, params RunParams, histories []model.History, summary *RunSummary) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "HistoryService.writeRunFiles"

	if len(histories) == 0 {
		return nil
	}

	rangeName := fmt.Sprintf(
		"%s_to_%s_%s",
		params.Start.Format(time.DateOnly),
		params.End.Format(time.DateOnly),
		params.Interval,
	)

	if params.WriteMerged {
		data, err := s.jsonGen.GenerateMerged(ctx, histories)
		if err != nil {
			return err
		}

		path := filepath.Join(params.Dirs.Merged, "merged_"+rangeName+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		summary.MergedPath = path
		slog.Info("wrote merged JSON", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))

		if params.Upload && s.cloudStorage != nil {
			link, err := s.cloudStorage.UploadFile(ctx, bytes.NewReader(data), filepath.Base(path))
			if err != nil {
				// Upload is best effort, the local file already exists.
				slog.Error("merged JSON upload failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			} else {
				summary.UploadLink = link
				slog.Info("uploaded merged JSON", slog.String("rqID", rqID), slog.String("op", op), slog.String("link", link))
			}
		}
	}

	if params.WriteXLSX {
		data, err := s.xlsxGen.Generate(ctx, histories)
		if err != nil {
			return err
		}

		path := filepath.Join(params.Dirs.XLSX, "history_"+rangeName+".xlsx")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		summary.XLSXPath = path
		slog.Info("wrote XLSX report", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))
	}

	return nil
}
