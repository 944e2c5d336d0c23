package tickerParser

import (
	"regexp"
	"strings"
)

var (
	// Numbered prefixes like "1.", "2)", "$3:", "4 -".
	numberedPrefixRe = regexp.MustCompile(`^\s*\$?\d+[.):]?\s*(-\s*)?`)
	// Bullets -, * or •.
	bulletPrefixRe = regexp.MustCompile(`^\s*[-*•]\s*`)
	// Yahoo symbols: letter or ^, then letters/digits or . - =
	symbolRe = regexp.MustCompile(`^[A-Za-z^][A-Za-z0-9.\-=]*$`)
)

// lineDelimiters are checked in order; a line is split on the first one found.
var lineDelimiters = []string{",", "|", ";", "\t"}

// parseText handles free-form ticker lists line by line. Each line passes
// through a fixed chain of rules: drop blanks and comments, strip numbering
// and bullets, cut company names after " - ", then extract symbols.
func parseText(content []byte) []string {
	var symbols []string
	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = stripEnumeration(line)
		line = stripBullet(line)
		line = cutNameSuffix(line)

		symbols = append(symbols, extractLineSymbols(line)...)
	}
	return dedupe(symbols)
}

func stripEnumeration(line string) string {
	return numberedPrefixRe.ReplaceAllString(line, "")
}

func stripBullet(line string) string {
	return bulletPrefixRe.ReplaceAllString(line, "")
}

// cutNameSuffix supports "AAPL - Apple Inc." style lines by keeping only the
// part before the first " - ", as long as that part is non-empty. Applied
// before the delimiter split on purpose, which can truncate exotic lines
// containing both; kept that way deliberately.
func cutNameSuffix(line string) string {
	left, _, found := strings.Cut(line, " - ")
	if !found {
		return line
	}
	if left = strings.TrimSpace(left); left != "" {
		return left
	}
	return line
}

// extractLineSymbols splits the line on the first delimiter present and keeps
// every piece that fully matches the symbol pattern. Without a delimiter only
// the first matching whitespace token is taken, so an undelimited line
// contributes at most one symbol.
func extractLineSymbols(line string) []string {
	for _, delim := range lineDelimiters {
		if !strings.Contains(line, delim) {
			continue
		}
		var symbols []string
		for _, piece := range strings.Split(line, delim) {
			piece = strings.TrimSpace(piece)
			if piece != "" && symbolRe.MatchString(piece) {
				symbols = append(symbols, normalizeSymbol(piece))
			}
		}
		return symbols
	}

	for _, token := range strings.Fields(line) {
		if symbolRe.MatchString(token) {
			return []string{normalizeSymbol(token)}
		}
	}
	return nil
}
