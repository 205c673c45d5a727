package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/serterm/internal/tui/styles"
)

// StatusBar is the one-line footer of the capture viewer.
type StatusBar struct {
	path  string
	state styles.FollowState
	bytes int64
	err   error
	width int
}

func NewStatusBar(path string) *StatusBar {
	return &StatusBar{path: path, state: styles.StateWaiting}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetState(state styles.FollowState) {
	sb.state = state
	if state != styles.StateError {
		sb.err = nil
	}
}

func (sb *StatusBar) State() styles.FollowState {
	return sb.state
}

func (sb *StatusBar) SetError(err error) {
	sb.state = styles.StateError
	sb.err = err
}

func (sb *StatusBar) AddBytes(n int) {
	sb.bytes += int64(n)
}

func (sb *StatusBar) Bytes() int64 {
	return sb.bytes
}

// FormatBytes renders a byte count the way the status bar shows it.
func FormatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// View renders mode, file, state, byte count and clock, with the left and
// right groups pushed to the edges.
func (sb *StatusBar) View(mode DisplayMode, timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	modeStyle := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(styles.Blue).
		Bold(true).
		Padding(0, 1)
	if mode == DisplayHex {
		modeStyle = modeStyle.Background(styles.Peach)
	}

	pathStyle := lipgloss.NewStyle().
		Foreground(styles.Mauve).
		Bold(true).
		Padding(0, 1)

	stateText := styles.StateGlyph(sb.state) + " " + sb.state.String()
	if sb.err != nil {
		stateText = styles.StateGlyph(sb.state) + " " + sb.err.Error()
	}

	divider := lipgloss.NewStyle().
		Foreground(styles.Surface2).
		Padding(0, 1).
		Render("│")

	left := lipgloss.JoinHorizontal(lipgloss.Left,
		modeStyle.Render(mode.String()),
		pathStyle.Render(sb.path),
		styles.StateStyle(sb.state).Render(stateText),
		divider,
	)

	right := lipgloss.JoinHorizontal(lipgloss.Left,
		lipgloss.NewStyle().Foreground(styles.Subtext0).Padding(0, 1).Render("⇣ "+FormatBytes(sb.bytes)),
		divider,
		lipgloss.NewStyle().Foreground(styles.Subtext1).Padding(0, 1).Render(timestamp),
	)

	spacer := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, left, lipgloss.NewStyle().Width(spacer).Render(""), right))
}
