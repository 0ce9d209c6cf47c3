package ohlc

import _ "embed"

// SampleCSV is a one-minute AAPL aggregate table used when no feed is configured.
//
//go:embed sample_aapl.csv
var SampleCSV string
