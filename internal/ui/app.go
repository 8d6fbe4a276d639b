package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/skytrack/internal/flight"
	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/prefs"
	"github.com/five82/skytrack/internal/refresh"
	"github.com/five82/skytrack/internal/state"
)

const (
	panStep  = 0.25
	zoomStep = 1.5
)

// Controller is the part of the refresh scheduler the UI drives.
type Controller interface {
	StartWatching(region flight.Region)
	Suspend()
	Resume()
	Refresh()
	SetSelectedCountry(country string)
	State() (refresh.State, flight.Region)
}

// Source is the part of the flight store the UI reads.
type Source interface {
	Snapshot() state.View
	Errors() (<-chan string, func())
	ClearError()
}

// Options configures the UI.
type Options struct {
	Context    context.Context // cancelling it stops the program
	Controller Controller
	Store      Source
	Viewport   flight.Viewport
	ThemeName  string
	PrefsPath  string
	PollTick   time.Duration
	LogPath    string // log file shown by the log view; empty when logging to stderr

	// KeepPollingInDialogs leaves the scheduler running while a dialog is open.
	KeepPollingInDialogs bool
	Logger     *logger.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctl        Controller
	store      Source
	prefsPath  string
	logPath    string
	pollTick   time.Duration
	log        *logger.Logger
	errCh      <-chan string
	stopErrors func()
	pauseModal bool

	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool

	view       state.View
	schedState refresh.State
	viewport   flight.Viewport

	selectedRow int
	offset      int

	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model and subscribes to surfaced errors.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 250 * time.Millisecond
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	m := Model{
		ctl:        opts.Controller,
		store:      opts.Store,
		prefsPath:  opts.PrefsPath,
		logPath:    opts.LogPath,
		pollTick:   pollTick,
		log:        opts.Logger.Named("ui"),
		theme:      GetTheme(themeName),
		keys:       DefaultKeyMap(),
		viewport:   opts.Viewport,
		stopErrors: func() {},
		pauseModal: !opts.KeepPollingInDialogs,
	}
	if m.store != nil {
		m.errCh, m.stopErrors = m.store.Errors()
		m.view = m.store.Snapshot()
	}
	if m.ctl != nil {
		m.schedState, _ = m.ctl.State()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store, m.ctl))
	}
	if m.errCh != nil {
		cmds = append(cmds, waitErrorCmd(m.errCh))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.clampSelection()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store, m.ctl))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.view = msg.view
		m.schedState = msg.state
		m.clampSelection()
		return m, nil

	case errorMsg:
		cmd := waitErrorCmd(m.errCh)
		if _, open := m.modal.(*errorModal); open {
			return m, cmd
		}
		m.openModal(&errorModal{message: string(msg)})
		return m, cmd

	case countrySelectedMsg:
		m.selectCountry(msg.Country)
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.closeModal()
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.closeModal()
		}
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.Refresh):
		if m.ctl != nil {
			m.ctl.Refresh()
		}

	case key.Matches(msg, m.keys.PanUp):
		m.moveViewport(m.viewport.Pan(panStep, 0))
	case key.Matches(msg, m.keys.PanDown):
		m.moveViewport(m.viewport.Pan(-panStep, 0))
	case key.Matches(msg, m.keys.PanLeft):
		m.moveViewport(m.viewport.Pan(0, -panStep))
	case key.Matches(msg, m.keys.PanRight):
		m.moveViewport(m.viewport.Pan(0, panStep))
	case key.Matches(msg, m.keys.ZoomIn):
		m.moveViewport(m.viewport.Zoom(1 / zoomStep))
	case key.Matches(msg, m.keys.ZoomOut):
		m.moveViewport(m.viewport.Zoom(zoomStep))

	case key.Matches(msg, m.keys.PickCountry):
		m.openModal(newCountryPicker(m.view.Countries, m.view.SelectedCountry))

	case key.Matches(msg, m.keys.ClearCountry):
		m.selectCountry("")

	case key.Matches(msg, m.keys.Logs):
		m.openModal(newLogModal(m.logPath))

	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
		m.clampSelection()
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
		m.clampSelection()
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		m.clampSelection()
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = len(m.view.Visible) - 1
		m.clampSelection()
	}
	return m, nil
}

// openModal shows a dialog, pausing polling while it is up unless configured otherwise.
func (m *Model) openModal(md Modal) {
	if m.modal == nil && m.pauseModal && m.ctl != nil {
		m.ctl.Suspend()
	}
	m.modal = md
}

// closeModal resumes polling. Dismissing an error always resumes, since
// suspend_on_error may have paused the scheduler on its own.
func (m *Model) closeModal() {
	_, wasError := m.modal.(*errorModal)
	if wasError && m.store != nil {
		m.store.ClearError()
	}
	m.modal = nil
	if (m.pauseModal || wasError) && m.ctl != nil {
		m.ctl.Resume()
	}
}

func (m *Model) selectCountry(country string) {
	if m.ctl != nil {
		m.ctl.SetSelectedCountry(country)
	}
	if m.store != nil {
		m.view = m.store.Snapshot()
	}
	m.selectedRow, m.offset = 0, 0
	m.clampSelection()
	m.savePrefs()
}

// moveViewport applies next when its region stays on the globe and
// restarts watching there.
func (m *Model) moveViewport(next flight.Viewport) {
	if !next.Region().Valid() {
		return
	}
	m.viewport = next
	if m.ctl != nil {
		m.ctl.StartWatching(next.Region())
	}
	m.savePrefs()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	vp := m.viewport
	p := prefs.Prefs{Theme: m.theme.Name, Country: m.view.SelectedCountry, Viewport: &vp}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save preferences failed", logger.String("path", m.prefsPath), logger.Error(err))
	}
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderRegionBar())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderErrorLine())
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	view  state.View
	state refresh.State
}

type errorMsg string

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store Source, ctl Controller) tea.Cmd {
	return func() tea.Msg {
		msg := snapshotMsg{view: store.Snapshot()}
		if ctl != nil {
			msg.state, _ = ctl.State()
		}
		return msg
	}
}

// waitErrorCmd blocks for the next surfaced error. A closed channel ends the wait.
func waitErrorCmd(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return errorMsg(msg)
	}
}

// Run starts the Bubble Tea program and blocks until it exits or the
// context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := New(opts)
	defer m.stopErrors()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
