package render

import (
	_ "embed"
	"errors"
	"html/template"
	"io"

	"github.com/Stormmysea/stock-website/internal/dashboard"
	"github.com/Stormmysea/stock-website/internal/search"
)

//go:embed page.html
var pageHTML string

var page = template.Must(template.New("page").Funcs(template.FuncMap{
	"price":     Price,
	"change":    Change,
	"percent":   Percent,
	"volume":    Volume,
	"millions":  Millions,
	"trillions": Trillions,
	"day":       Day,
	"company": func(symbol string) string {
		return search.CompanyNames[symbol]
	},
}).Parse(pageHTML))

// HTML writes the dashboard page for st.
func HTML(w io.Writer, st *dashboard.State) error {
	if st == nil {
		return errors.New("render: no dashboard state")
	}
	return page.Execute(w, st)
}
