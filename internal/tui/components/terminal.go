package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/allbin/serterm/internal/charset"
)

// DefaultScrollback is how many captured bytes the viewer keeps.
const DefaultScrollback = 512 * 1024

// Terminal is a scrolling view over the captured byte stream.
type Terminal struct {
	viewport   viewport.Model
	formatter  *DataFormatter
	data       []byte
	base       int64 // file offset of data[0]
	scrollback int
	follow     bool
}

func NewTerminal(width, height int, cs *charset.Charset) *Terminal {
	return &Terminal{
		viewport:   viewport.New(width, height),
		formatter:  NewDataFormatter(cs),
		scrollback: DefaultScrollback,
		follow:     true,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	t.render()
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

// Append adds bytes read from the file. The oldest bytes are dropped once
// the scrollback is full, in whole hex rows so offsets stay aligned.
func (t *Terminal) Append(p []byte) {
	t.data = append(t.data, p...)
	if over := len(t.data) - t.scrollback; over > 0 {
		over = (over + bytesPerRow - 1) / bytesPerRow * bytesPerRow
		over = min(over, len(t.data))
		t.data = append(t.data[:0], t.data[over:]...)
		t.base += int64(over)
	}
	t.render()
}

// Clear empties the view; hex offsets continue from where they were.
func (t *Terminal) Clear() {
	t.base += int64(len(t.data))
	t.data = t.data[:0]
	t.render()
}

// Reset empties the view and restarts offsets at zero, for a file that
// was truncated or replaced.
func (t *Terminal) Reset() {
	t.base = 0
	t.data = t.data[:0]
	t.render()
}

func (t *Terminal) Len() int {
	return len(t.data)
}

func (t *Terminal) ToggleMode() {
	t.formatter.ToggleMode()
	t.render()
}

func (t *Terminal) Mode() DisplayMode {
	return t.formatter.Mode()
}

// Following reports whether new data scrolls the view to the bottom.
func (t *Terminal) Following() bool {
	return t.follow
}

func (t *Terminal) SetFollow(follow bool) {
	t.follow = follow
	if follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) LineUp()     { t.viewport.LineUp(1); t.follow = false }
func (t *Terminal) LineDown()   { t.viewport.LineDown(1) }
func (t *Terminal) PageUp()     { t.viewport.ViewUp(); t.follow = false }
func (t *Terminal) PageDown()   { t.viewport.ViewDown() }
func (t *Terminal) GotoTop()    { t.viewport.GotoTop(); t.follow = false }
func (t *Terminal) GotoBottom() { t.SetFollow(true) }

func (t *Terminal) render() {
	t.viewport.SetContent(t.formatter.Format(t.data, t.base))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Update(msg tea.Msg) tea.Cmd {
	// Keys are handled by the model so the viewport does not steal them
	switch msg.(type) {
	case tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		if !t.viewport.AtBottom() {
			t.follow = false
		}
		return cmd
	}
	return nil
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
