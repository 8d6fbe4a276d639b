package ui

import (
	"fmt"
	"strings"

	"github.com/five82/skytrack/internal/flight"
)

type column struct {
	title string
	width int
	value func(flight.Record) string
}

var flightColumns = []column{
	{"CALLSIGN", 10, func(r flight.Record) string { return orDash(r.Callsign) }},
	{"ICAO24", 8, func(r flight.Record) string { return orDash(r.ID) }},
	{"COUNTRY", 24, func(r flight.Record) string { return orDash(r.OriginCountry) }},
	{"LAT", 9, func(r flight.Record) string { return fmt.Sprintf("%9.4f", r.Latitude) }},
	{"LON", 10, func(r flight.Record) string { return fmt.Sprintf("%10.4f", r.Longitude) }},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// tableHeight is the number of data rows that fit under the headers.
func (m Model) tableHeight() int {
	// header, region bar, column titles, error line
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// clampSelection keeps the cursor and scroll offset inside the visible list.
func (m *Model) clampSelection() {
	n := len(m.view.Visible)
	if n == 0 {
		m.selectedRow, m.offset = 0, 0
		return
	}
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
	rows := m.tableHeight()
	if m.selectedRow < m.offset {
		m.offset = m.selectedRow
	}
	if m.selectedRow >= m.offset+rows {
		m.offset = m.selectedRow - rows + 1
	}
	if last := max(0, n-rows); m.offset > last {
		m.offset = last
	}
}

// renderTable renders the visible flights.
func (m Model) renderTable() string {
	styles := m.theme.Styles()

	var b strings.Builder
	var title []string
	for _, c := range flightColumns {
		title = append(title, padRight(c.title, c.width))
	}
	b.WriteString(styles.MutedText.Bold(true).Render(truncate(strings.Join(title, "  "), m.width)))
	b.WriteString("\n")

	rows := m.tableHeight()
	if len(m.view.Visible) == 0 {
		msg := "No flights in view"
		if m.view.Loading {
			msg = "Loading flights..."
		}
		b.WriteString(styles.FaintText.Render(msg))
		for i := 1; i < rows; i++ {
			b.WriteString("\n")
		}
		return b.String()
	}

	end := min(m.offset+rows, len(m.view.Visible))
	for i := m.offset; i < end; i++ {
		rec := m.view.Visible[i]
		cells := make([]string, len(flightColumns))
		for j, c := range flightColumns {
			cells[j] = padRight(c.value(rec), c.width)
		}
		line := truncate(strings.Join(cells, "  "), m.width)
		if i == m.selectedRow {
			b.WriteString(styles.Selected.Width(m.width).Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	for i := end - m.offset; i < rows; i++ {
		b.WriteString("\n")
	}
	return b.String()
}
