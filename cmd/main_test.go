package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintTickers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printTickers(&buf, []string{"BTC-USD", "ETH-USD"}, "tickers.txt", 50)

	assert.Equal(t, "Parsed 2 tickers from tickers.txt:\n  1. BTC-USD\n  2. ETH-USD\n", buf.String())
}

func TestPrintTickers_CapsOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printTickers(&buf, []string{"BTC-USD", "ETH-USD", "SOL-USD"}, "tickers.txt", 2)

	assert.Contains(t, buf.String(), "... and 1 more")
	assert.NotContains(t, buf.String(), "3. SOL-USD")
}
