package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

const allCountriesLabel = "All countries"

// countrySelectedMsg is emitted when the picker closes with a choice.
// An empty Country clears the filter.
type countrySelectedMsg struct {
	Country string
}

// countryPicker lists the countries present in the current data set.
type countryPicker struct {
	options []string // options[0] is the "all" entry
	cursor  int
	offset  int
}

func newCountryPicker(countries []string, selected string) *countryPicker {
	opts := make([]string, 0, len(countries)+1)
	opts = append(opts, allCountriesLabel)
	opts = append(opts, countries...)

	p := &countryPicker{options: opts}
	if selected != "" {
		for i, c := range countries {
			if c == selected {
				p.cursor = i + 1
				break
			}
		}
	}
	return p
}

func (p *countryPicker) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape):
		return p, nil, true
	case key.Matches(km, keys.Confirm):
		choice := ""
		if p.cursor > 0 {
			choice = p.options[p.cursor]
		}
		return p, func() tea.Msg { return countrySelectedMsg{Country: choice} }, true
	case key.Matches(km, keys.Up), km.String() == "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, keys.Down), km.String() == "down":
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}
	case key.Matches(km, keys.Top):
		p.cursor = 0
	case key.Matches(km, keys.Bottom):
		p.cursor = len(p.options) - 1
	}
	return p, nil, false
}

func (p *countryPicker) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	rows := height - 10
	if rows < 3 {
		rows = 3
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
	end := min(p.offset+rows, len(p.options))

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Filter by country"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n")
	for i := p.offset; i < end; i++ {
		label := truncate(p.options[i], 34)
		if i == p.cursor {
			b.WriteString(styles.Selected.Width(34).Render("> " + label))
		} else {
			b.WriteString(styles.Text.Render("  " + label))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("enter select · esc cancel"))

	return placeModal(theme, width, height, theme.Accent, b.String())
}

// errorModal shows one surfaced fetch error until dismissed.
type errorModal struct {
	message string
}

func (e *errorModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, false
	}
	if key.Matches(km, keys.Escape) || key.Matches(km, keys.Confirm) {
		return e, nil, true
	}
	return e, nil, false
}

func (e *errorModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Error"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Width(40).Render(e.message))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("enter/esc dismiss"))

	return placeModal(theme, width, height, theme.Danger, b.String())
}

func placeModal(theme Theme, width, height int, border, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
