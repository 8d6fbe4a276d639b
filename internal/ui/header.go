package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/skytrack/internal/refresh"
)

// feedStatus picks the badge shown in the header. The scheduler state wins
// over data state so a paused feed never looks live.
func (m Model) feedStatus() string {
	switch {
	case m.schedState == refresh.Suspended:
		return "suspended"
	case m.view.Loading:
		return "loading"
	case m.view.Err != "" && m.view.FromCache():
		return "cached"
	case m.view.Err != "":
		return "error"
	case m.view.FromCache():
		return "cached"
	case m.schedState == refresh.Idle:
		return "idle"
	default:
		return "live"
	}
}

// renderHeader renders the status bar: logo, badge, counts and update time.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	status := m.feedStatus()
	parts := []string{
		bg.Render("skytrack", styles.Logo),
		styles.StatusStyle(status).Render(status),
		bg.Render(fmt.Sprintf("%d", len(m.view.Visible)), styles.Text.Bold(true)) + bg.Space() +
			bg.Render(fmt.Sprintf("of %d airborne", m.airborneCount()), styles.MutedText),
	}

	country := m.view.SelectedCountry
	if country == "" {
		country = allCountriesLabel
	}
	parts = append(parts,
		bg.Render("country", styles.FaintText)+bg.Space()+bg.Render(truncate(country, 24), styles.AccentText))

	if !m.view.UpdatedAt.IsZero() {
		parts = append(parts,
			bg.Render("updated", styles.FaintText)+bg.Space()+
				bg.Render(m.view.UpdatedAt.Local().Format("15:04:05"), styles.MutedText))
	}
	if m.view.ConsecutiveFailures > 1 {
		parts = append(parts,
			bg.Render(fmt.Sprintf("%d failures", m.view.ConsecutiveFailures), styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// renderRegionBar renders the second header line: region and key hints.
func (m Model) renderRegionBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	r := m.viewport.Region()
	region := fmt.Sprintf("lat %.2f..%.2f  lon %.2f..%.2f", r.MinLat, r.MaxLat, r.MinLon, r.MaxLon)

	left := bg.Render("region", styles.FaintText) + bg.Space() + bg.Render(region, styles.Text)
	hints := bg.Join([]string{
		bg.Render("<arrows>", styles.WarningText) + bg.Space() + bg.Render("pan", styles.MutedText),
		bg.Render("<+/->", styles.WarningText) + bg.Space() + bg.Render("zoom", styles.MutedText),
		bg.Render("<c>", styles.WarningText) + bg.Space() + bg.Render("country", styles.MutedText),
		bg.Render("<h>", styles.WarningText) + bg.Space() + bg.Render("help", styles.MutedText),
	}, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if gap < 2 {
		return styles.Footer.Width(m.width).Render(left)
	}
	return styles.Footer.Width(m.width).Render(left + bg.Spaces(gap) + hints)
}

// renderErrorLine shows a persistent error under the table while one is set.
func (m Model) renderErrorLine() string {
	if m.view.Err == "" {
		return ""
	}
	styles := m.theme.Styles()
	msg := m.view.Err
	if m.view.FromCache() && m.view.DataTime > 0 {
		msg += " (showing cached data from " + time.Unix(m.view.DataTime, 0).Local().Format("15:04:05") + ")"
	}
	return styles.DangerText.Width(m.width).Render(truncate(msg, m.width))
}

func (m Model) airborneCount() int {
	n := 0
	for _, f := range m.view.Flights {
		if !f.OnGround {
			n++
		}
	}
	return n
}
