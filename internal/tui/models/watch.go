package models

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/serterm/internal/charset"
	"github.com/allbin/serterm/internal/tui/components"
	"github.com/allbin/serterm/internal/tui/keys"
	"github.com/allbin/serterm/internal/tui/styles"
	"github.com/allbin/serterm/internal/watch"
)

// FollowMsg delivers a follower event to the program.
type FollowMsg watch.Event

// FollowErrMsg reports that the follower stopped with an error.
type FollowErrMsg struct {
	Err error
}

// WatchModel is the bubbletea model of the capture file viewer.
type WatchModel struct {
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.WatchKeys
	ready     bool
	now       func() time.Time

	// stop is called on quit so the follower goroutine ends with the program
	stop func()
}

func NewWatchModel(path string, cs *charset.Charset, stop func()) *WatchModel {
	if stop == nil {
		stop = func() {}
	}
	return &WatchModel{
		terminal:  components.NewTerminal(0, 0, cs),
		statusBar: components.NewStatusBar(path),
		help:      help.New(),
		keys:      keys.NewWatchKeys(),
		now:       time.Now,
		stop:      stop,
	}
}

func (m *WatchModel) Init() tea.Cmd {
	return nil
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Content border and status bar take one line each, help one more
		m.terminal.SetSize(msg.Width, max(msg.Height-3, 1))
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.ready = true

	case FollowMsg:
		m.handleEvent(watch.Event(msg))

	case FollowErrMsg:
		m.statusBar.SetError(msg.Err)

	case tea.MouseMsg:
		cmd := m.terminal.Update(msg)
		m.syncState()
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Clear):
			m.terminal.Clear()
		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleMode()
		case key.Matches(msg, m.keys.Follow):
			m.terminal.SetFollow(!m.terminal.Following())
		case key.Matches(msg, m.keys.Up):
			m.terminal.LineUp()
		case key.Matches(msg, m.keys.Down):
			m.terminal.LineDown()
		case key.Matches(msg, m.keys.PageUp):
			m.terminal.PageUp()
		case key.Matches(msg, m.keys.PageDown):
			m.terminal.PageDown()
		case key.Matches(msg, m.keys.GotoTop):
			m.terminal.GotoTop()
		case key.Matches(msg, m.keys.GotoBottom):
			m.terminal.GotoBottom()
		}
		m.syncState()
	}
	return m, nil
}

func (m *WatchModel) handleEvent(ev watch.Event) {
	switch ev.Kind {
	case watch.Data:
		m.terminal.Append(ev.Data)
		m.statusBar.AddBytes(len(ev.Data))
		if m.statusBar.State() == styles.StateWaiting {
			m.statusBar.SetState(styles.StateFollowing)
		}
		m.syncState()
	case watch.Waiting:
		m.statusBar.SetState(styles.StateWaiting)
	case watch.Truncated:
		m.terminal.Reset()
		m.syncState()
	}
}

// syncState mirrors the viewer's follow flag into the status bar, leaving
// waiting and error states alone.
func (m *WatchModel) syncState() {
	switch m.statusBar.State() {
	case styles.StateWaiting, styles.StateError:
		return
	}
	if m.terminal.Following() {
		m.statusBar.SetState(styles.StateFollowing)
	} else {
		m.statusBar.SetState(styles.StatePaused)
	}
}

// Mode reports the current display mode.
func (m *WatchModel) Mode() components.DisplayMode {
	return m.terminal.Mode()
}

// State reports what the status bar shows.
func (m *WatchModel) State() styles.FollowState {
	return m.statusBar.State()
}

// Received is the number of bytes seen since start.
func (m *WatchModel) Received() int64 {
	return m.statusBar.Bytes()
}

func (m *WatchModel) View() string {
	content := "Initializing..."
	if m.ready {
		content = m.terminal.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.ContentBorderStyle.Render(content),
		m.help.View(m.keys),
		m.statusBar.View(m.terminal.Mode(), m.now().Format("15:04:05")),
	)
}
