package service

import "errors"

var (
	ErrInvalidDate = errors.New("error invalid date, expected YYYY-MM-DD with start <= end")
	ErrNoTickers   = errors.New("error no tickers found")
)
