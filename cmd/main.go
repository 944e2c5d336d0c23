package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/config"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/externalApi/yahooApi"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/reportGenerator"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/reportGenerator/csvGenerator"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/reportGenerator/jsonGenerator"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/reportGenerator/xlsxGenerator"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/scheduler"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/service"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/service/historyService"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/internal/tickerParser"
	"github.com/aamitssharma07/CryptoScrapperYahooFinance/utils"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	tickersFile := flag.String("tickers-file", "", "input file with tickers (txt/csv/tsv/json/jsonl), required")
	col := flag.String("col", "", "for CSV/TSV: column name or 0-based index containing tickers")
	outdir := flag.String("outdir", cfg.Output.BaseDir, "base output directory")
	start := flag.String("start", "", "start date YYYY-MM-DD (default "+cfg.Fetch.DefaultStart+")")
	end := flag.String("end", "", "end date YYYY-MM-DD (default today)")
	interval := flag.String("interval", "1d", "download interval, one of: "+strings.Join(yahooApi.SupportedIntervals, " "))
	autoAdjust := flag.Bool("auto-adjust", false, "auto-adjust prices for dividends and splits")
	writeCSV := flag.Bool("csv", false, "write per-ticker CSV files")
	writeJSON := flag.Bool("json", false, "write per-ticker JSON files")
	writeXLSX := flag.Bool("xlsx", false, "write one XLSX workbook for the run")
	writeMerged := flag.Bool("merged-json", false, "write merged JSON with all tickers")
	upload := flag.Bool("upload", false, "upload the merged JSON to Google Drive")
	retries := flag.Int("retries", cfg.Fetch.Retries, "retry attempts per symbol")
	sleep := flag.Duration("sleep", cfg.Fetch.BaseSleep, "base sleep between requests and backoff unit")
	dryRun := flag.Bool("dry-run", false, "only parse and print tickers, then exit")
	maxPrint := flag.Int("max-print", 50, "limit printed tickers with -dry-run")
	every := flag.Duration("every", 0, "re-run the whole fetch on this interval, 0 means one-shot")
	flag.Parse()

	if *tickersFile == "" {
		fmt.Fprintln(os.Stderr, "-tickers-file is required")
		flag.Usage()
		os.Exit(2)
	}

	if !yahooApi.IntervalSupported(*interval) {
		fmt.Fprintf(os.Stderr, "unsupported interval %q, expected one of: %s\n", *interval, strings.Join(yahooApi.SupportedIntervals, " "))
		os.Exit(2)
	}

	// Per-run flags override the env defaults before components are built.
	cfg.Fetch.Retries = *retries
	cfg.Fetch.BaseSleep = *sleep

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	parser := tickerParser.New()
	yahooApiClient := yahooApi.New(cfg)
	csvGen := csvGenerator.New()
	jsonGen := jsonGenerator.New()
	xlsxGen := xlsxGenerator.New()

	var cloudStorage historyService.CloudStorage
	if *upload {
		if cfg.GoogleDrive.CredentialsFile == "" {
			fmt.Fprintln(os.Stderr, "-upload requires GOOGLE_DRIVE_CREDENTIALS_FILE to be set")
			os.Exit(2)
		}
		googleDrive, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			slog.Error("failed to init google drive client", slog.String("err", err.Error()))
			os.Exit(2)
		}
		cloudStorage = googleDrive
	}

	historySrv := historyService.New(cfg, parser, yahooApiClient, csvGen, jsonGen, xlsxGen, cloudStorage)

	tickers, err := historySrv.ParseTickers(utils.CreateCtxWithRqID(ctx), *tickersFile, *col)
	if err != nil {
		slog.Error("error while reading tickers", slog.String("file", *tickersFile), slog.String("err", err.Error()))
		os.Exit(2)
	}

	// An empty ticker list aborts even in dry-run mode.
	if len(tickers) == 0 {
		slog.Error("no tickers found, nothing to do", slog.String("file", *tickersFile))
		os.Exit(2)
	}

	if *dryRun {
		printTickers(os.Stdout, tickers, *tickersFile, *maxPrint)
		return
	}

	startDate, endDate, err := historySrv.ValidateDates(*start, *end)
	if err != nil {
		slog.Error("date error", slog.String("err", err.Error()))
		os.Exit(2)
	}

	dirs, err := reportGenerator.EnsureDirs(*outdir)
	if err != nil {
		slog.Error("failed to create output directories", slog.String("outdir", *outdir), slog.String("err", err.Error()))
		os.Exit(2)
	}

	params := historyService.RunParams{
		Start:       startDate,
		End:         endDate,
		Interval:    *interval,
		AutoAdjust:  *autoAdjust,
		WriteCSV:    *writeCSV,
		WriteJSON:   *writeJSON,
		WriteXLSX:   *writeXLSX,
		WriteMerged: *writeMerged,
		Upload:      *upload,
		Dirs:        dirs,
	}

	runOnce := func(ctx context.Context) error {
		summary, err := historySrv.Run(utils.CreateCtxWithRqID(ctx), params, tickers)
		if err != nil {
			return err
		}
		slog.Info(
			"done",
			slog.Int("total", summary.Total),
			slog.Int("fetched", summary.Fetched),
			slog.Int("empty", summary.Empty),
			slog.Int("failed", summary.Failed),
		)
		return nil
	}

	if *every > 0 {
		sched := scheduler.New()
		sched.NewIntervalJob("fetch history", runOnce, *every, true)
		sched.Start()
		defer sched.Stop()

		<-ctx.Done()
		return
	}

	if err := runOnce(ctx); err != nil {
		if errors.Is(err, service.ErrNoTickers) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func printTickers(w io.Writer, tickers []string, filename string, maxPrint int) {
	fmt.Fprintf(w, "Parsed %d tickers from %s:\n", len(tickers), filename)
	for i, symbol := range tickers {
		if i >= maxPrint {
			fmt.Fprintf(w, "... and %d more\n", len(tickers)-maxPrint)
			break
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, symbol)
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
