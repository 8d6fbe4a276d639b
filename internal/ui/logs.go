package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/skytrack/internal/logtail"
)

const logTailLines = 200

// logModal shows the tail of the log file as read when it was opened.
type logModal struct {
	path    string
	entries []logtail.Entry
	err     error
	offset  int // lines scrolled up from the bottom
}

func newLogModal(path string) *logModal {
	m := &logModal{path: path}
	if path == "" {
		m.err = errors.New("logging to stderr, no log file to show")
		return m
	}
	m.entries, m.err = logtail.Tail(path, logTailLines)
	return m
}

func (l *logModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape), key.Matches(km, keys.Logs):
		return l, nil, true
	case key.Matches(km, keys.Up), km.String() == "up":
		if l.offset < len(l.entries)-1 {
			l.offset++
		}
	case key.Matches(km, keys.Down), km.String() == "down":
		if l.offset > 0 {
			l.offset--
		}
	case key.Matches(km, keys.Top):
		l.offset = max(0, len(l.entries)-1)
	case key.Matches(km, keys.Bottom):
		l.offset = 0
	}
	return l, nil, false
}

func (l *logModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	inner := max(20, width-8)
	rows := max(3, height-9)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Logs"))
	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render(truncate(l.path, inner-6)))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", min(inner, 60))))
	b.WriteString("\n")

	switch {
	case l.err != nil:
		b.WriteString(styles.DangerText.Render(l.err.Error()))
	case len(l.entries) == 0:
		b.WriteString(styles.FaintText.Render("No log lines yet"))
	default:
		end := len(l.entries) - l.offset
		start := max(0, end-rows)
		for i := start; i < end; i++ {
			b.WriteString(renderLogEntry(theme, l.entries[i], inner))
			if i < end-1 {
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("j/k scroll · esc close"))

	return placeModal(theme, width, height, theme.Border, b.String())
}

func renderLogEntry(theme Theme, e logtail.Entry, width int) string {
	styles := theme.Styles()
	if e.Time.IsZero() {
		return styles.Text.Render(truncate(e.Message, width))
	}

	levelStyle := styles.MutedText
	switch e.Level {
	case "warn":
		levelStyle = styles.WarningText
	case "error", "dpanic", "panic", "fatal":
		levelStyle = styles.DangerText
	case "info":
		levelStyle = styles.InfoText
	}

	prefix := e.Time.Local().Format("15:04:05") + " " + padRight(strings.ToUpper(e.Level), 5) + " "
	text := e.Message
	if e.Logger != "" {
		text = e.Logger + ": " + text
	}
	if e.Fields != "" {
		text += " " + e.Fields
	}
	text = truncate(text, width-lipgloss.Width(prefix))

	return styles.FaintText.Render(prefix[:9]) + levelStyle.Render(prefix[9:]) + styles.Text.Render(text)
}
