package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vadiminshakov/coinboard/internal/app"
	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/services/market/analysis"
)

const maxRows = 25

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	danger    = lipgloss.AdaptiveColor{Light: "#D9534F", Dark: "#FF6B6B"}
	subtle    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Background(highlight).Padding(0, 1)
	subStyle    = lipgloss.NewStyle().Foreground(subtle)
	okStyle     = lipgloss.NewStyle().Foreground(special)
	errorStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(danger).Border(lipgloss.RoundedBorder()).Padding(0, 1)

	heatStyles = map[domain.HeatLevel]lipgloss.Style{
		domain.HeatHighest: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1B7F3B")),
		domain.HeatHigh:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#2FA35A")),
		domain.HeatMedium:  lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#7FD19B")),
		domain.HeatLow:     lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#CDEFD8")),
	}
)

func renderSnapshot(s app.Snapshot) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Title))
	b.WriteString("\n")
	b.WriteString(subStyle.Render(s.Subtitle))
	b.WriteString("\n\n")

	if s.Notice != "" {
		b.WriteString(noticeStyle.Render(s.Notice))
		b.WriteString("\n\n")
	}

	if s.View.IsSettings() {
		b.WriteString(renderConfigs(s.RefreshConfigs))
		return b.String()
	}

	if len(s.Heatmap) > 0 {
		b.WriteString(renderHeatmap(s.Heatmap))
		b.WriteString("\n\n")
	}

	if s.EmptyWatchlist {
		b.WriteString(subStyle.Render("This watchlist is empty. Import coins with: coinctl import <id> <names or tickers>"))
		return b.String()
	}

	b.WriteString(renderRows(s.Rows, s.ActiveWatchlist != nil))
	if len(s.Rows) > maxRows {
		b.WriteString("\n")
		b.WriteString(subStyle.Render(fmt.Sprintf("… %d more", len(s.Rows)-maxRows)))
	}
	b.WriteString("\n")
	b.WriteString(subStyle.Render(fmt.Sprintf("sorted by %s %s", s.Table.SortKey, s.Table.SortDir)))

	return b.String()
}

func renderHeatmap(tiles []analysis.HeatTile) string {
	cells := make([]string, 0, len(tiles))
	for _, t := range tiles {
		text := fmt.Sprintf("%s\n%s", t.Category, t.Label)
		if len(t.TopSymbols) > 0 {
			text += "\n" + strings.Join(t.TopSymbols, " ")
			if t.Overflow > 0 {
				text += fmt.Sprintf(" +%d", t.Overflow)
			}
		}
		style := heatStyles[t.Level].Padding(0, 1).Width(18)
		if t.Selected {
			style = style.Bold(true).Underline(true)
		}
		cells = append(cells, style.Render(text))
	}

	var lines []string
	for i := 0; i < len(cells); i += 4 {
		end := min(i+4, len(cells))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRows(rows []app.Row, withNotes bool) string {
	headers := []string{"#", "Coin", "Price", "1h", "24h", "7d", "Volume 24h", "Market Cap"}
	if withNotes {
		headers = append(headers, "Note")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers(headers...)

	for i, r := range rows {
		if i == maxRows {
			break
		}
		line := []string{
			fmt.Sprint(r.Asset.Rank),
			fmt.Sprintf("%s %s", r.Asset.Symbol, r.Asset.Name),
			r.Price,
			colorChange(r.Asset.Change1h, r.Change1h),
			colorChange(r.Asset.Change24h, r.Change24h),
			colorChange(r.Asset.Change7d, r.Change7d),
			r.Volume24h,
			r.MarketCap,
		}
		if withNotes {
			line = append(line, r.Note)
		}
		t.Row(line...)
	}

	return t.Render()
}

func colorChange(v float64, text string) string {
	if v < 0 {
		return lipgloss.NewStyle().Foreground(danger).Render(text)
	}
	return okStyle.Render(text)
}

func renderConfigs(configs []domain.RefreshConfig) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers("Stream", "Name", "Source", "Enabled", "Interval", "Recommended", "Allowed", "Last updated")

	for _, c := range configs {
		enabled := errorStyle.Render("off")
		if c.Enabled {
			enabled = okStyle.Render("on")
		}
		t.Row(string(c.ID), c.Name, c.Source, enabled, c.Interval, c.Recommended,
			strings.Join(c.AllowedIntervals, " "), c.LastUpdated.Format("15:04:05"))
	}

	return t.Render()
}

func renderWatchlists(lists []domain.Watchlist) string {
	if len(lists) == 0 {
		return subStyle.Render("no watchlists")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers("ID", "Name", "Coins", "Notes")

	for _, w := range lists {
		notes := 0
		for _, n := range w.NotesByCoinID {
			if n != "" {
				notes++
			}
		}
		t.Row(w.ID, w.Name, fmt.Sprint(len(w.CoinIDs)), fmt.Sprint(notes))
	}

	return t.Render()
}
