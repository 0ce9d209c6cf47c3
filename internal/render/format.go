// Package render draws the dashboard state for the terminal and the browser.
package render

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Stormmysea/stock-website/internal/model"
)

// Price formats a price as dollars and cents.
func Price(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Change formats a quote's move as "+1.23 (+0.65%)".
func Change(q model.Quote) string {
	sign := ""
	if q.Up() {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f (%s%.2f%%)", sign, q.Change, sign, q.ChangePercent)
}

// Percent formats a quote's percentage move with an explicit sign when up.
func Percent(q model.Quote) string {
	sign := ""
	if q.Up() {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, q.ChangePercent)
}

// Volume formats a share count with thousands separators.
func Volume(v int64) string {
	return humanize.Comma(v)
}

// Millions formats a volume as "12.34M".
func Millions(v int64) string {
	return fmt.Sprintf("%.2fM", float64(v)/1e6)
}

// Trillions formats a market cap as "1.23T".
func Trillions(v float64) string {
	return fmt.Sprintf("%.2fT", v/1e12)
}

// Day formats a candle timestamp for the candle table.
func Day(r model.OHLCRecord) string {
	return r.Time().UTC().Format("2006-01-02 15:04")
}
