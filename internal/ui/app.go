package ui

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/five82/shutter/internal/logging"
	"github.com/five82/shutter/internal/notify"
	"github.com/five82/shutter/internal/photoapi"
	"github.com/five82/shutter/internal/prefs"
	"github.com/five82/shutter/internal/search"
	"github.com/five82/shutter/internal/upload"
)

// pane identifies which part of the screen receives keys.
type pane int

const (
	paneQuery pane = iota
	paneResults
	panePicker
	paneLabels
	paneCount
)

// pickerChrome is the vertical space the file picker reserves below its
// listing when sized from a window message.
const pickerChrome = 5

// Options configures the UI.
type Options struct {
	Context  context.Context
	Searcher photoapi.Searcher
	Uploader photoapi.Uploader
	Logger   *slog.Logger
	// Clock times notification expiry. Nil uses the real clock.
	Clock     clockwork.Clock
	ThemeName string
	PrefsPath string
	// StartDir is where the file picker opens. Empty means the working
	// directory.
	StartDir string
	// CopyText writes to the system clipboard. Nil uses atotto/clipboard.
	CopyText func(string) error
}

// Model is the root application state for Bubble Tea. It composes the two
// orchestrators and owns the only notification center.
type Model struct {
	ctx       context.Context
	logger    *slog.Logger
	prefsPath string
	copyText  func(string) error

	search search.Model
	upload upload.Model
	picker filepicker.Model
	center notify.Center

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	theme    Theme
	focus    pane
	lastDir  string
	width    int
	height   int
	ready    bool
	showHelp bool
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	startDir := opts.StartDir
	if startDir == "" {
		if wd, err := os.Getwd(); err == nil {
			startDir = wd
		} else {
			startDir = "."
		}
	}
	fp := filepicker.New()
	fp.CurrentDirectory = startDir
	fp.ShowPermissions = false
	fp, _ = fp.Update(tea.WindowSizeMsg{Height: pickerRows + pickerChrome})

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		logger:    logger.With("component", "ui"),
		prefsPath: prefsPath,
		copyText:  copyText,
		search:    search.New(ctx, opts.Searcher, logger),
		upload:    upload.New(ctx, opts.Uploader, logger),
		picker:    fp,
		center:    notify.New(opts.Clock),
		spinner:   sp,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		lastDir:   opts.StartDir,
	}
	m.applyTheme()
	m.search.Focus()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.picker.Init(),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notify.ShowMsg:
		var cmd tea.Cmd
		m.center, cmd = m.center.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil
	}

	return m.broadcast(msg)
}

// broadcast hands a non-key message to every child. Each child ignores
// messages it does not own.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 5)
	m.center, cmds[0] = m.center.Update(msg)
	m.search, cmds[1] = m.search.Update(msg)
	m.upload, cmds[2] = m.upload.Update(msg)
	m.picker, cmds[3] = m.picker.Update(msg)
	m.spinner, cmds[4] = m.spinner.Update(msg)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()
	case key.Matches(msg, m.keys.NextPane):
		return m, m.setFocus((m.focus + 1) % paneCount)
	case key.Matches(msg, m.keys.PrevPane):
		return m, m.setFocus((m.focus + paneCount - 1) % paneCount)
	case key.Matches(msg, m.keys.Upload):
		var cmd tea.Cmd
		m.upload, cmd = m.upload.Submit()
		return m, cmd
	}

	switch m.focus {
	case paneQuery:
		return m.handleQueryKey(msg)
	case paneResults:
		return m.handleResultsKey(msg)
	case panePicker:
		return m.handlePickerKey(msg)
	case paneLabels:
		return m.handleLabelsKey(msg)
	}
	return m, nil
}

func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if key.Matches(msg, m.keys.Submit) {
		m.search, cmd = m.search.Submit()
		return m, cmd
	}
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "?":
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.search.MoveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.search.MoveSelection(1)
	case key.Matches(msg, m.keys.Copy):
		if url, ok := m.search.Selected(); ok {
			return m, copyCmd(m.copyText, url)
		}
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.upload.Busy() {
		return m, nil
	}
	if msg.String() == "?" {
		m.showHelp = true
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	didSelect, path := m.picker.DidSelectFile(msg)
	if !didSelect {
		return m, cmd
	}

	var (
		accepted bool
		note     tea.Cmd
	)
	m.upload, accepted, note = m.upload.Select(path)
	if !accepted {
		return m, tea.Batch(cmd, note)
	}
	m.lastDir = filepath.Dir(path)
	m.savePrefs()
	return m, tea.Batch(cmd, note, m.setFocus(paneLabels))
}

func (m Model) handleLabelsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if key.Matches(msg, m.keys.Submit) {
		m.upload, cmd = m.upload.Submit()
		return m, cmd
	}
	m.upload, cmd = m.upload.Update(msg)
	return m, cmd
}

// setFocus moves keyboard focus to p and gives its text input the cursor.
func (m *Model) setFocus(p pane) tea.Cmd {
	m.focus = p
	m.search.Blur()
	m.upload.Blur()
	switch p {
	case paneQuery:
		return m.search.Focus()
	case paneLabels:
		return m.upload.Focus()
	}
	return nil
}

func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyTheme()
	m.savePrefs()
	return m, nil
}

// applyTheme restyles the bubbles widgets for the current theme.
func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	m.spinner.Style = styles.AccentText
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
	m.help.Styles.FullKey = styles.AccentText
	m.help.Styles.FullDesc = styles.MutedText
	m.help.Styles.FullSeparator = styles.FaintText
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastDir: m.lastDir}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

// copyCmd writes text to the clipboard off the event loop and reports the
// outcome as a notification.
func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return notify.ShowMsg{Notification: notify.Notification{
				Text:     "Copy failed: " + err.Error(),
				Severity: notify.SeverityError,
			}}
		}
		return notify.ShowMsg{Notification: notify.Notification{
			Text:     "Copied " + photoapi.DisplayName(text),
			Severity: notify.SeverityNeutral,
		}}
	}
}

// Run starts the Bubble Tea program and blocks until it exits or the
// options' context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	popts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		popts = append(popts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, popts...)
	_, err := p.Run()
	return err
}
