package tickerParser

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/aamitssharma07/CryptoScrapperYahooFinance/utils"
)

// commonColumns are the header names and object keys that are recognized as
// ticker columns when no explicit column hint is given. Order matters for the
// object key scan.
var commonColumns = []string{
	"ticker", "tickers", "symbol", "symbols",
	"Ticker", "Tickers", "Symbol", "Symbols",
	"Ticker Symbol", "SYMBOL", "TICKER",
}

// candidateKeys extends commonColumns with provider-specific aliases used
// only for JSON object records.
var candidateKeys = append(slices.Clone(commonColumns), "TickerSymbol", "RIC", "Yahoo", "YahooSymbol")

type TickerParser struct{}

func New() *TickerParser {
	return &TickerParser{}
}

// ParseFile reads a ticker list from a file of loosely specified shape and
// returns the normalized, deduplicated symbols in first-seen order. The
// format is picked by extension: .csv and .tsv are tables with a header row,
// .json is a single document, .jsonl is one JSON value per line, anything
// else is treated as free text.
func (p *TickerParser) ParseFile(ctx context.Context, path string, colHint string) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TickerParser.ParseFile"

	slog.Debug("ParseFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))

	content, err := os.ReadFile(path)
	if err != nil {
		slog.Error("got error reading tickers file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	var symbols []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		symbols, err = parseTable(content, ',', colHint)
	case ".tsv":
		symbols, err = parseTable(content, '\t', colHint)
	case ".json":
		symbols, err = parseJSON(content)
	case ".jsonl":
		symbols, err = parseJSONL(content)
	default:
		symbols = parseText(content)
	}

	if err != nil {
		slog.Error("got error parsing tickers file", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("ParseFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("symbols", len(symbols)))

	return symbols, nil
}

func parseTable(content []byte, comma rune, colHint string) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = comma

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []string{}, nil
	}

	header := records[0]
	rows := records[1:]

	idx, err := resolveColumn(header, colHint)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(rows))
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		if cell := strings.TrimSpace(row[idx]); cell != "" {
			symbols = append(symbols, normalizeSymbol(cell))
		}
	}
	return dedupe(symbols), nil
}

// resolveColumn picks the ticker column. A numeric hint is tried as a
// zero-based index before name lookup, even when the hint string is also a
// valid header name.
func resolveColumn(header []string, colHint string) (int, error) {
	if colHint != "" {
		if idx, err := strconv.Atoi(colHint); err == nil {
			if idx < 0 || idx >= len(header) {
				return 0, fmt.Errorf("%w: index %d out of range, available: %v", ErrColumnNotFound, idx, header)
			}
			return idx, nil
		}
		idx := slices.Index(header, colHint)
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q, available: %v", ErrColumnNotFound, colHint, header)
		}
		return idx, nil
	}

	for idx, name := range header {
		if slices.Contains(commonColumns, name) {
			return idx, nil
		}
	}
	return 0, nil
}

func parseJSON(content []byte) ([]string, error) {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	list, ok := doc.([]any)
	if !ok {
		return nil, ErrUnsupportedJSONStructure
	}

	if symbols, ok := symbolsFromStrings(list); ok {
		return dedupe(symbols), nil
	}
	if symbols, ok := symbolsFromObjects(list); ok {
		return dedupe(symbols), nil
	}
	return nil, ErrUnsupportedJSONStructure
}

func parseJSONL(content []byte) ([]string, error) {
	var symbols []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var value any
		if err := json.Unmarshal([]byte(line), &value); err != nil {
			return nil, err
		}

		switch v := value.(type) {
		case string:
			symbols = append(symbols, normalizeSymbol(v))
		case map[string]any:
			if symbol, ok := symbolFromObject(v); ok {
				symbols = append(symbols, symbol)
			}
		}
	}
	return dedupe(symbols), nil
}

func symbolsFromStrings(list []any) ([]string, bool) {
	symbols := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		symbols = append(symbols, normalizeSymbol(s))
	}
	return symbols, true
}

func symbolsFromObjects(list []any) ([]string, bool) {
	symbols := make([]string, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		if symbol, ok := symbolFromObject(obj); ok {
			symbols = append(symbols, symbol)
		}
	}
	return symbols, true
}

// symbolFromObject scans the candidate keys in order and takes the first one
// whose value is a non-empty string. Objects without any are skipped.
func symbolFromObject(obj map[string]any) (string, bool) {
	for _, key := range candidateKeys {
		value, present := obj[key]
		if !present {
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			return normalizeSymbol(s), true
		}
	}
	return "", false
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
