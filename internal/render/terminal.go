package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Stormmysea/stock-website/internal/dashboard"
	"github.com/Stormmysea/stock-website/internal/search"
	"github.com/Stormmysea/stock-website/internal/terminal"
)

var (
	green = lipgloss.Color("#00FF41")
	red   = lipgloss.Color("#FF0040")
	cyan  = lipgloss.Color("#00CCFF")
	grey  = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(green).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(24)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(0, 1)

	upStyle    = lipgloss.NewStyle().Foreground(green)
	downStyle  = lipgloss.NewStyle().Foreground(red)
	mutedStyle = lipgloss.NewStyle().Foreground(grey)
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

// CardsPerRow is the number of stock cards per terminal row.
const CardsPerRow = 4

// CandleRows is the number of trailing candles shown in the chart panel.
const CandleRows = 8

// Terminal writes the full dashboard as styled text.
func Terminal(w io.Writer, st *dashboard.State) error {
	if st == nil {
		_, err := fmt.Fprintln(w, mutedStyle.Render("Loading market data..."))
		return err
	}

	var b strings.Builder
	b.WriteString(header(st))
	b.WriteString("\n")
	b.WriteString(cards(st))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chartPanel(st), " ", sidePanel(st)))
	b.WriteString("\n")
	b.WriteString(newsPanel(st))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func header(st *dashboard.State) string {
	statusStyle := downStyle
	if st.Status.Open {
		statusStyle = upStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("STOCK MARKET DASHBOARD"),
		statusStyle.Render("● "+st.Status.Label),
		mutedStyle.Render(fmt.Sprintf("  %s  %s EST  updated %s",
			st.Status.Session,
			st.Status.Time.Format("15:04:05"),
			st.UpdatedAt.Format("15:04:05"))),
	)
}

func card(symbol, price, change string, up bool, detail string) string {
	style := cardStyle.BorderForeground(red)
	changeStyle := downStyle
	if up {
		style = cardStyle.BorderForeground(green)
		changeStyle = upStyle
	}
	return style.Render(strings.Join([]string{
		boldStyle.Render(symbol),
		price,
		changeStyle.Render(change),
		mutedStyle.Render(detail),
	}, "\n"))
}

func cards(st *dashboard.State) string {
	var rows []string
	var row []string
	for _, q := range st.Quotes {
		detail := fmt.Sprintf("H %s  L %s\nVol %s", Price(q.High), Price(q.Low), Volume(q.Volume))
		row = append(row, card(q.Symbol, Price(q.Price), Change(q), q.Up(), detail))
		if len(row) == CardsPerRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func chartPanel(st *dashboard.State) string {
	c := st.Chart
	var b strings.Builder
	b.WriteString(boldStyle.Render(fmt.Sprintf("%s MARKET OVERVIEW", c.Ticker)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%s, %d candles)", c.Source, c.Count)))
	b.WriteString("\n")

	moveStyle := upStyle
	if c.Change < 0 {
		moveStyle = downStyle
	}
	b.WriteString(fmt.Sprintf("Open %s  Close %s  ", Price(c.FirstOpen), Price(c.LastClose)))
	b.WriteString(moveStyle.Render(fmt.Sprintf("%+.2f (%+.2f%%)", c.Change, c.ChangePercent)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("High %s  Low %s  SMA5 %s  RSI14 %.1f\n\n",
		Price(c.High), Price(c.Low), Price(c.SMA5), c.RSI14))

	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-16s %9s %9s %9s %9s %10s", "TIME (UTC)", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")))
	candles := st.Candles
	if len(candles) > CandleRows {
		candles = candles[len(candles)-CandleRows:]
	}
	for _, r := range candles {
		line := fmt.Sprintf("%-16s %9.2f %9.2f %9.2f %9.2f %10s", Day(r), r.Open, r.High, r.Low, r.Close, Volume(r.Volume))
		if r.Close >= r.Open {
			line = upStyle.Render(line)
		} else {
			line = downStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return panelStyle.Render(b.String())
}

func sidePanel(st *dashboard.State) string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("MOST ACTIVE"))
	for _, q := range st.MostActive {
		name := search.CompanyNames[q.Symbol]
		if name == "" {
			name = q.Symbol
		}
		moveStyle := upStyle
		if !q.Up() {
			moveStyle = downStyle
		}
		b.WriteString(fmt.Sprintf("\n%-5s %-22s %8s ", q.Symbol, name, Millions(q.Volume)))
		b.WriteString(moveStyle.Render(Percent(q)))
	}
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("MARKET STATS"))
	b.WriteString(fmt.Sprintf("\nTotal volume  %s", Millions(st.Stats.TotalVolume)))
	b.WriteString(fmt.Sprintf("\nActive stocks %d", st.Stats.ActiveStocks))
	b.WriteString(fmt.Sprintf("\nMarket cap    %s", Trillions(st.Stats.MarketCap)))
	return panelStyle.Render(b.String())
}

func newsPanel(st *dashboard.State) string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("MARKET NEWS"))
	for _, n := range st.News {
		b.WriteString("\n• " + n.Title + "  " + mutedStyle.Render(n.Source+" "+n.Date))
	}
	return panelStyle.Render(b.String())
}

// TerminalLines writes console output lines coloured by kind.
func TerminalLines(w io.Writer, lines []terminal.Line) error {
	prompt := upStyle.Render(terminal.Prompt)
	for _, l := range lines {
		text := l.Text
		switch l.Kind {
		case terminal.KindSuccess:
			text = upStyle.Render(text)
		case terminal.KindError:
			text = downStyle.Render(text)
		case terminal.KindCommand:
			text = lipgloss.NewStyle().Foreground(cyan).Render(text)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", prompt, text); err != nil {
			return err
		}
	}
	return nil
}
