package tickerParser

import "errors"

var (
	ErrColumnNotFound           = errors.New("error column not found")
	ErrUnsupportedJSONStructure = errors.New("unsupported JSON structure, expected a list of strings or a list of objects")
)
